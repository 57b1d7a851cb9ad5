package intake

// Step names of the AgriCred intake wizard, in order
const (
	StepRegistration       = "registration"
	StepFarmstead          = "farmstead"
	StepGeneralInformation = "general-information"
	StepProof              = "proof"
	StepEducation          = "education"
	StepContact            = "contact"
	StepProperty           = "property"
	StepFinal              = "final-step"
)

// Form names used by the AgriCred steps
const (
	FormAccount   = "account"
	FormField     = "field"
	FormProfile   = "profile"
	FormDocument  = "document"
	FormEducation = "education"
	FormContact   = "contact"
	FormBank      = "bank"
	FormFinancial = "financial"
	FormHome      = "home"
	FormGuarantor = "guarantor"
	FormLoan      = "loan"
	FormRepayment = "repayment"
)

// Collection names used by the AgriCred steps
const (
	CollectionIncome     = "incomeHistory"
	CollectionLand       = "landHoldings"
	CollectionBorrowings = "borrowings"
)

// CollectionDefinition declares one repeatable section of a step
type CollectionDefinition struct {
	Schema      Schema         `json:"schema" yaml:"schema"`
	Policy      DeletionPolicy `json:"policy" yaml:"policy"`
	InitialRows int            `json:"initial_rows" yaml:"initial_rows"`
}

// StepDefinition declares everything a step holds. A session is built from
// a slice of these; the slice order is the step order.
type StepDefinition struct {
	Name        string                   `json:"name" yaml:"name"`
	Title       string                   `json:"title" yaml:"title"`
	Forms       []Schema                 `json:"forms,omitempty" yaml:"forms,omitempty"`
	Collections []CollectionDefinition   `json:"collections,omitempty" yaml:"collections,omitempty"`
	Assets      map[AssetCategory]Schema `json:"assets,omitempty" yaml:"assets,omitempty"`
}

var (
	conditionOptions = labelled("excellent", "Excellent", "good", "Good", "fair", "Fair", "poor", "Poor")
	yesNo            = labelled("yes", "Yes", "no", "No")
)

// AgriCredSteps returns the eight-step AgriCred intake table. year is the
// default for year fields, normally the current calendar year.
func AgriCredSteps(year int) []StepDefinition {
	return []StepDefinition{
		{
			Name:  StepRegistration,
			Title: "Registration",
			Forms: []Schema{NewSchema(FormAccount, "Account",
				text("fullName", "Full Name").required(),
				text("aadhaar", "Aadhaar Number").required(),
				email("email", "Email").required(),
			)},
		},
		{
			Name:  StepFarmstead,
			Title: "Farmstead",
			Forms: []Schema{NewSchema(FormField, "Field",
				number("fieldSize", "Field Size").atLeast(0).unit("ha"),
				text("currentCrop", "Current Crop"),
				enum("previousCrop", "Previous Crop", "",
					options("Grain Legumes", "Grain Crops", "Sunflower", "Berries")),
				enum("workforce", "Workforce", "",
					options("Up to 5", "5 - 10", "10 - 25", "Over 25")),
			)},
		},
		{
			Name:  StepGeneralInformation,
			Title: "General Information",
			Forms: []Schema{NewSchema(FormProfile, "Personal Information",
				text("fullName", "Name of Applicant"),
				number("age", "Age"),
				enum("gender", "Gender", "", labelled("male", "Male", "female", "Female", "other", "Other")),
				enum("constitution", "Constitution", "", labelled(
					"fpc", "FPC", "fpo", "FPO", "shg", "SHG", "msme", "MSME", "trust", "Trust", "other", "Other")),
				text("address", "Address"),
				enum("caste", "Caste", "", labelled("general", "General", "obc", "OBC", "sc", "SC", "st", "ST")),
				text("pan", "PAN").matching("[A-Z]{5}[0-9]{4}[A-Z]"),
				text("gst", "GST Number").matching("[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]"),
				number("totalExperience", "Total Years of Farming Experience").between(0, 99),
				enum("farmingType", "Primary Type of Farming", "", labelled(
					"crop_farming", "Crop Farming",
					"dairy_farming", "Dairy Farming",
					"poultry_farming", "Poultry Farming",
					"mixed_farming", "Mixed Farming",
					"organic_farming", "Organic Farming",
					"other", "Other")),
				multi("crops", "Major Crops/Activities", labelled(
					"rice", "Rice", "wheat", "Wheat", "pulses", "Pulses",
					"vegetables", "Vegetables", "fruits", "Fruits", "dairy", "Dairy")),
				enum("training", "Agricultural Training", "", yesNo),
				text("additionalDetails", "Additional Details"),
			)},
			Collections: []CollectionDefinition{{
				Schema: NewSchema(CollectionIncome, "Past Records",
					number("year", "Year").required().between(1900, 2100).withDefault(year),
					number("income", "Income").required().atLeast(0).unit("₹"),
					number("fieldSize", "Field Size").required().atLeast(0).unit("ha"),
					text("crops", "Crops").required(),
					number("price", "Price").required().atLeast(0).unit("₹/ton"),
					number("yield", "Yield").required().atLeast(0).unit("ton/ha"),
					number("reportedIncome", "Reported Income").required().atLeast(0).unit("₹"),
				),
				Policy:      DeletionUnguarded,
				InitialRows: 1,
			}},
		},
		{
			Name:  StepProof,
			Title: "Proof",
			Forms: []Schema{NewSchema(FormDocument, "Document",
				enum("documentType", "Document Type", string(DocumentAadhaarCard), labelled(
					string(DocumentAadhaarCard), "Aadhaar Card",
					string(DocumentElectricityBill), "Electricity Bill",
					string(DocumentPANCard), "PAN Card")).required(),
				text("fileName", "File").readOnly(),
			)},
		},
		{
			Name:  StepEducation,
			Title: "Education",
			Forms: []Schema{NewSchema(FormEducation, "Education",
				enum("qualification", "Qualification", "higher", labelled(
					"secondary", "Secondary",
					"higher", "Higher Secondary",
					"graduate", "Graduate")).required(),
				text("institution", "Institution"),
				enum("startYear", "Start Year", "", options("2025", "2024", "2023", "2022", "2021")),
				enum("endYear", "End Year", "", options("2025", "2024", "2023", "2022", "2021")),
				enum("scoreType", "Score Type", "percentage", labelled("percentage", "Percentage", "cgpa", "CGPA")),
				number("score", "Score").atLeast(0),
				text("additional", "Additional Information"),
			)},
		},
		{
			Name:  StepContact,
			Title: "Contact",
			Forms: []Schema{NewSchema(FormContact, "Contact",
				pattern("mobileNumber", "Mobile Number", "[0-9]{10}").required(),
				email("email", "Email").required(),
				pattern("alternateMobile", "Alternate Mobile Number", "[0-9]{10}"),
				email("alternateEmail", "Alternate Email"),
			)},
		},
		{
			Name:  StepProperty,
			Title: "Property",
			Forms: []Schema{
				NewSchema(FormBank, "Bank Details",
					text("bankName", "Bank Name"),
					text("branchName", "Branch Name"),
					text("accountNumber", "Account Number"),
				),
				NewSchema(FormFinancial, "Financial Details",
					number("agriculturalIncome", "Agricultural Income").atLeast(0).unit("₹"),
					number("otherIncome", "Other Income").atLeast(0).unit("₹"),
					number("monthlyExpenses", "Monthly Expenses").unit("₹").readOnly(),
					number("totalIncome", "Total Income").unit("₹").readOnly(),
				),
				NewSchema(FormHome, "Home Ownership",
					number("occupantsCount", "Number of Occupants").atLeast(0),
					number("dependentsCount", "Number of Dependents").atLeast(0),
					text("houseArea", "House Area").readOnly(),
					text("sanitaryAvailability", "Sanitary Availability").readOnly(),
				),
				NewSchema(FormGuarantor, "Guarantor Details",
					text("bank", "Bank"),
					number("guaranteeAmount", "Guarantee Amount").atLeast(0).unit("₹"),
					number("outstanding", "Outstanding").atLeast(0).unit("₹"),
					text("status", "Status").withDefault("Regular"),
				),
			},
			Collections: []CollectionDefinition{
				{
					Schema: NewSchema(CollectionLand, "Land Holdings",
						text("village", "Village"),
						text("surveyNo", "Survey No."),
						enum("holdingType", "Holding Type", "Freehold", options("Freehold", "Leasehold", "Joint Ownership")),
						number("area", "Area").atLeast(0).unit("acres"),
						enum("irrigated", "Irrigated", "Yes", options("Yes", "No")),
						enum("irrigationSource", "Irrigation Source", "Bore Well", options("Bore Well", "No")),
						text("charge", "Charge"),
					),
					Policy:      DeletionStrictMinimumOne,
					InitialRows: 1,
				},
				{
					Schema: NewSchema(CollectionBorrowings, "Past Borrowings",
						number("year", "Year"),
						text("institution", "Institution"),
						text("accountNumber", "Account Number"),
						text("purpose", "Purpose"),
						number("outstandingAmount", "Outstanding Amount").atLeast(0).unit("₹"),
						number("installmentDue", "Installment Due").atLeast(0).unit("₹"),
						number("overdueAmount", "Overdue Amount").atLeast(0).unit("₹"),
						text("securities", "Securities"),
					),
					Policy:      DeletionGuarded,
					InitialRows: 1,
				},
			},
			Assets: AssetSchemas(year),
		},
		{
			Name:  StepFinal,
			Title: "Final Step",
			Forms: []Schema{
				NewSchema(FormLoan, "Loan Details",
					text("amount", "Loan Amount").readOnly().withDefault("₹15,000"),
					text("duration", "Duration").readOnly().withDefault("9 months"),
					text("interest", "Interest").readOnly().withDefault("8%"),
					text("purpose", "Purpose").withDefault("Crop farming"),
					enum("type", "Loan Type", "Harvesting", options("Harvesting", "Sowing", "Equipment Purchase")).required(),
				),
				NewSchema(FormRepayment, "Repayment Options",
					enum("type", "Repayment Type", "differential", labelled("differential", "Differential", "equal", "Equal")).required(),
					enum("gracePeriod", "Grace Period", "", labelled("3", "3 months", "6", "6 months", "8", "8 months")),
					enum("paymentFrequency", "Payment Frequency", "", labelled(
						"weekly", "Weekly", "monthly", "Monthly", "quarterly", "Quarterly", "two stages", "Two Stages")),
					Field{Name: "cropBail", Label: "Crop Bail", Kind: FieldKindBool, Default: false},
				),
			},
		},
	}
}

// AssetSchemas returns the per-category schemas of the agricultural asset
// ledger. year is the default manufacture year of vehicles; the vehicle
// year range runs from 1960 to 2025, or to year once that is later.
func AssetSchemas(year int) map[AssetCategory]Schema {
	count := number("count", "Count").atLeast(0).withDefault(0)
	age := number("age", "Age").atLeast(0).unit("years").withDefault(0)
	value := number(ValueField, "Value").atLeast(0).unit("₹").withDefault(0)
	monthlyIncome := number("monthlyIncome", "Monthly Income").atLeast(0).unit("₹").withDefault(0)
	condition := enum("condition", "Condition", "good", conditionOptions)
	vehicle := func(c AssetCategory, label string) Schema {
		return NewSchema(string(c), label,
			number("year", "Year").between(1960, float64(max(year, 2025))).withDefault(year),
			number("mileage", "Mileage").atLeast(0).unit("km").withDefault(0),
			condition,
			value,
		)
	}

	return map[AssetCategory]Schema{
		AssetPloughingAnimals: NewSchema(string(AssetPloughingAnimals), "Ploughing Animals",
			count, age, enum("health", "Health", "good", conditionOptions), value),
		AssetMilchAnimals: NewSchema(string(AssetMilchAnimals), "Milch Animals",
			count, age, monthlyIncome, value),
		AssetFarmBirds: NewSchema(string(AssetFarmBirds), "Farm Birds",
			count, enum("type", "Type", "poultry", labelled("poultry", "Poultry", "duck", "Duck", "other", "Other")),
			monthlyIncome, value),
		AssetPumpSets: NewSchema(string(AssetPumpSets), "Pump Sets",
			count, age, condition, value),
		AssetTractor:   vehicle(AssetTractor, "Tractor"),
		AssetTransport: vehicle(AssetTransport, "Transport Vehicle"),
	}
}
