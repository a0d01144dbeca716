package web

// views.go shapes storage records into the JSON the API serves.

import (
	"github.com/google/uuid"

	"github.com/stringauthority/registry/internal/catalog"
	"github.com/stringauthority/registry/internal/postgres"
)

// listResponse wraps list results so the top level is always an object.
type listResponse struct {
	Items any `json:"items"`
}

type manufacturerView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName *string   `json:"display_name,omitempty"`
	Country     *string   `json:"country,omitempty"`
	FoundedYear *int      `json:"founded_year,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
}

func manufacturersJSON(recs []catalog.ManufacturerRecord) []manufacturerView {
	out := make([]manufacturerView, len(recs))
	for i, rec := range recs {
		out[i] = manufacturerView{
			ID:          rec.ID,
			Name:        rec.Name,
			DisplayName: rec.DisplayName,
			Country:     rec.Country,
			FoundedYear: rec.FoundedYear,
			Website:     rec.Website,
			Status:      rec.Status,
			Notes:       rec.Notes,
		}
	}
	return out
}

type modelView struct {
	ID                  uuid.UUID `json:"id"`
	ManufacturerName    string    `json:"manufacturer_name"`
	Name                string    `json:"name"`
	Year                int       `json:"year"`
	ProductionType      string    `json:"production_type"`
	ProductionStartDate *string   `json:"production_start_date,omitempty"`
	ProductionEndDate   *string   `json:"production_end_date,omitempty"`
	MSRPOriginal        *float64  `json:"msrp_original,omitempty"`
	Currency            string    `json:"currency"`
	Description         *string   `json:"description,omitempty"`
}

func modelsJSON(rows []postgres.ModelSearchRow) []modelView {
	out := make([]modelView, len(rows))
	for i, row := range rows {
		out[i] = modelView{
			ID:                  row.ID,
			ManufacturerName:    row.ManufacturerName,
			Name:                row.Name,
			Year:                row.Year,
			ProductionType:      row.ProductionType,
			ProductionStartDate: row.ProductionStartDate,
			ProductionEndDate:   row.ProductionEndDate,
			MSRPOriginal:        row.MSRPOriginal,
			Currency:            row.Currency,
			Description:         row.Description,
		}
	}
	return out
}

type guitarView struct {
	ID                       uuid.UUID  `json:"id"`
	ModelID                  *uuid.UUID `json:"model_id,omitempty"`
	ModelName                *string    `json:"model_name,omitempty"`
	ManufacturerName         *string    `json:"manufacturer_name,omitempty"`
	ManufacturerNameFallback *string    `json:"manufacturer_name_fallback,omitempty"`
	ModelNameFallback        *string    `json:"model_name_fallback,omitempty"`
	YearEstimate             *string    `json:"year_estimate,omitempty"`
	Description              *string    `json:"description,omitempty"`
	Nickname                 *string    `json:"nickname,omitempty"`
	SerialNumber             *string    `json:"serial_number,omitempty"`
	ProductionDate           *string    `json:"production_date,omitempty"`
	SignificanceLevel        string     `json:"significance_level"`
	CurrentEstimatedValue    *float64   `json:"current_estimated_value,omitempty"`
	ConditionRating          *string    `json:"condition_rating,omitempty"`
}

func guitarsJSON(rows []postgres.GuitarSearchRow) []guitarView {
	out := make([]guitarView, len(rows))
	for i, row := range rows {
		out[i] = guitarView{
			ID:                       row.ID,
			ModelID:                  row.ModelID,
			ModelName:                row.ModelName,
			ManufacturerName:         row.ManufacturerName,
			ManufacturerNameFallback: row.ManufacturerNameFallback,
			ModelNameFallback:        row.ModelNameFallback,
			YearEstimate:             row.YearEstimate,
			Description:              row.Description,
			Nickname:                 row.Nickname,
			SerialNumber:             row.SerialNumber,
			ProductionDate:           row.ProductionDate,
			SignificanceLevel:        row.SignificanceLevel,
			CurrentEstimatedValue:    row.CurrentEstimatedValue,
			ConditionRating:          row.ConditionRating,
		}
	}
	return out
}
