package catalog

// schema.go declares the structural constraints each payload kind is
// validated against: allowed value sets, numeric bounds, and string length
// caps. Keeping them in one place keeps validate.go free of magic numbers.

// Allowed value sets.
var (
	ManufacturerStatuses = []string{"active", "defunct", "acquired"}
	ProductionTypes      = []string{"mass", "limited", "custom", "prototype", "one-off"}
	SignificanceLevels   = []string{"historic", "notable", "rare", "custom"}
	ConditionRatings     = []string{"mint", "excellent", "very_good", "good", "fair", "poor", "relic"}
)

// Defaults applied at write time when the submitter leaves the field out.
const (
	DefaultManufacturerStatus = "active"
	DefaultProductionType     = "mass"
	DefaultSignificanceLevel  = "notable"
	DefaultCurrency           = "USD"
)

// String length caps.
const (
	maxManufacturerNameLen = 100
	maxDisplayNameLen      = 50
	maxCountryLen          = 50
	maxModelNameLen        = 150
	maxCurrencyLen         = 3
	maxNicknameLen         = 50
	maxSerialNumberLen     = 50
	maxYearEstimateLen     = 50
	maxSpecTextLen         = 50
	maxPickupConfigLen     = 150
)

// Numeric bounds.
const (
	minFoundedYear = 1800
	maxFoundedYear = 2030
	minModelYear   = 1900
	maxModelYear   = 2030

	minScaleLength = 20.0
	maxScaleLength = 30.0
	minNumFrets    = 12
	maxNumFrets    = 36
	minNutWidth    = 1.0
	maxNutWidth    = 2.5
	minWeightLbs   = 1.0
	maxWeightLbs   = 20.0
)

// dateLayout is the accepted wire format for all date fields.
const dateLayout = "2006-01-02"
