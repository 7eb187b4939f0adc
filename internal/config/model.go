package config

// Profile is one batch profile.
type Profile struct {
	Name          string   `validate:"required"`
	Stage         string   `validate:"required,oneof=analyze profile"`
	Modules       []string `validate:"dive,required"`
	Requested     []string `validate:"dive,required"`
	Exclude       []string
	Mortal        bool
	Workers       int    `validate:"gte=1,lte=256"`
	InputDir      string `validate:"required"`
	Pattern       string `validate:"required,glob"`
	OutputDir     string `validate:"required_if=Stage analyze"`
	Repository    string
	ReferenceData string
	Precomputed   string
	Comment       string

	Aircraft      Aircraft
	FlightRecords map[string]FlightRecord `validate:"dive"`
	Report        Report
}

// Aircraft describes the airframe every flight of the batch was recorded on.
type Aircraft struct {
	Frame              string
	Manufacturer       string
	Series             string
	Family             string
	Model              string
	TailNumber         string
	PrecisePositioning bool
	FrameDoubled       bool
}

// FlightRecord is what operations recorded about one flight.
type FlightRecord struct {
	TakeoffAirport string `validate:"omitempty,len=4,alphanum"`
	TakeoffRunway  string
	LandingAirport string `validate:"omitempty,len=4,alphanum"`
	LandingRunway  string
}

// Report selects the report sinks. Empty fields are disabled.
type Report struct {
	SQLite   string
	Workbook string `validate:"omitempty,endswith=.xlsx"`
	SocketIO string `validate:"omitempty,url"`
}
