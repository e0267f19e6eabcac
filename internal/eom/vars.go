package eom

// Dynamic mission variable names shared by every phase.
const (
	Mass                = "mass"
	Drag                = "drag"
	Lift                = "lift"
	ThrustTotal         = "thrust_net_total"
	TAS                 = "TAS"
	TASRate             = "TAS_rate"
	Distance            = "distance"
	DistanceRate        = "distance_rate"
	Altitude            = "altitude"
	AltitudeRate        = "altitude_rate"
	FlightPathAngle     = "flight_path_angle"
	FlightPathAngleRate = "flight_path_angle_rate"
	RequiredLift        = "required_lift"
	Alpha               = "alpha"
	AlphaRate           = "alpha_rate"
	NormalForce         = "normal_force"
	FuselagePitch       = "fuselage_pitch"
	LoadFactor          = "load_factor"
	WingIncidence       = "aircraft:wing:incidence"
)
