package models

// City is a known Peruvian city with fixed coordinates. Trip publishing
// resolves from_loc against this table; there is no geocoding service.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// PeruCities is the static catalog served to clients. Order matters
// for the UI (north to south along the coast, then the sierra).
var PeruCities = []City{
	{Name: "Lima", Lat: -12.0464, Lng: -77.0428},
	{Name: "Trujillo", Lat: -8.1120, Lng: -79.0288},
	{Name: "Chiclayo", Lat: -6.7714, Lng: -79.8409},
	{Name: "Piura", Lat: -5.1945, Lng: -80.6328},
	{Name: "Tumbes", Lat: -3.5669, Lng: -80.4515},
	{Name: "Ica", Lat: -14.0678, Lng: -75.7286},
	{Name: "Tacna", Lat: -18.0066, Lng: -70.2463},
	{Name: "Arequipa", Lat: -16.4090, Lng: -71.5375},
	{Name: "Cusco", Lat: -13.5320, Lng: -71.9675},
	{Name: "Puno", Lat: -15.8402, Lng: -70.0219},
	{Name: "Huancayo", Lat: -12.0651, Lng: -75.2049},
	{Name: "Ayacucho", Lat: -13.1588, Lng: -74.2239},
	{Name: "Cajamarca", Lat: -7.1638, Lng: -78.5003},
	{Name: "Huaraz", Lat: -9.5278, Lng: -77.5278},
	{Name: "Iquitos", Lat: -3.7437, Lng: -73.2516},
	{Name: "Pucallpa", Lat: -8.3791, Lng: -74.5539},
	{Name: "Tarapoto", Lat: -6.4889, Lng: -76.3650},
}

// LookupCity resolves a city name to its coordinates. Returns nil when
// the city is not in the catalog; trips still publish, just without
// driver coordinates.
func LookupCity(name string) *City {
	for i := range PeruCities {
		if PeruCities[i].Name == name {
			return &PeruCities[i]
		}
	}
	return nil
}
