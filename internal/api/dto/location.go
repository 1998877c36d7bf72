package dto

type LocationResponse struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Demand float64 `json:"demand"`
}

type ListLocationsResponse struct {
	Depot     LocationResponse   `json:"depot"`
	Locations []LocationResponse `json:"locations"`
}
