package dto

type ValidationRow struct {
	Cliente   string `json:"cliente"`
	Direccion string `json:"direccion"`
	Ciudad    string `json:"ciudad"`
}

type ValidationRequest struct {
	Rows []ValidationRow `json:"rows"`
}

type GeocodedStopResponse struct {
	Address        string   `json:"address"`
	ClientName     string   `json:"client_name"`
	AllClientNames []string `json:"all_client_names"`
	PackageCount   int      `json:"package_count"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
}

type ValidationResponse struct {
	Geocoded        []GeocodedStopResponse `json:"geocoded"`
	Failed          []FailedStopResponse   `json:"failed"`
	TotalPackages   int                    `json:"total_packages"`
	UniqueAddresses int                    `json:"unique_addresses"`
}
