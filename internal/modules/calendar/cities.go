package calendar

import "strings"

// cityCoordinates lists known locations in lookup order. Scan order matters:
// the first entry matching the queried string wins.
var cityCoordinates = []struct {
	name      string
	longitude float64
	latitude  float64
}{
	{"北京", 116.4074, 39.9042},
	{"上海", 121.4737, 31.2304},
	{"广州", 113.2644, 23.1291},
	{"深圳", 114.0579, 22.5431},
	{"杭州", 120.1551, 30.2741},
	{"成都", 104.0668, 30.5728},
	{"重庆", 106.5516, 29.5630},
	{"西安", 108.9398, 34.3416},
	{"南京", 118.7969, 32.0603},
	{"昆明", 102.7123, 25.0406},
	{"昆明市", 102.7123, 25.0406},
	{"云南省", 102.7123, 25.0406},
}

// lookupCoordinates resolves a place string against the city table. The match
// runs both ways, so "北京市朝阳区" resolves to 北京 and "昆" resolves to 昆明.
func lookupCoordinates(place string) (longitude, latitude float64, ok bool) {
	if place == "" {
		return 0, 0, false
	}
	for _, c := range cityCoordinates {
		if strings.Contains(place, c.name) || strings.Contains(c.name, place) {
			return c.longitude, c.latitude, true
		}
	}
	return 0, 0, false
}
