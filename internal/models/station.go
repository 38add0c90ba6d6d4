package models

// Station is a physical kitchen area to which preparation is routed.
type Station string

const (
	StationGrill  Station = "grill"
	StationCold   Station = "cold"
	StationPastry Station = "pastry"
	StationBar    Station = "bar"
	StationPass   Station = "pass"
)

// courseStations routes each course to the station that prepares it.
var courseStations = map[CourseType]Station{
	CourseAppetizer: StationCold,
	CourseStarter:   StationCold,
	CourseSoup:      StationGrill,
	CourseMain:      StationGrill,
	CourseDessert:   StationPastry,
	CourseDrink:     StationBar,
}

// StationFor returns the preparing station for a course. Items in
// plating or ready sit at the pass regardless of course.
func StationFor(course CourseType, status ItemStatus) Station {
	if status == ItemStatusPlating || status == ItemStatusReady {
		return StationPass
	}
	return courseStations[course]
}

// Stations returns every station in display order.
func Stations() []Station {
	return []Station{StationGrill, StationCold, StationPastry, StationBar, StationPass}
}
