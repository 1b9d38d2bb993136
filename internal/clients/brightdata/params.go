package brightdata

import (
	"net/url"

	"github.com/smartcv/searchpanel/internal/entities"
)

// searchRequest is the wire form of one search, posted to the trigger
// endpoint as a single-element array per the dataset API contract.
type searchRequest struct {
	Location        string `json:"location"`
	Keyword         string `json:"keyword"`
	Country         string `json:"country"`
	TimeRange       string `json:"time_range"`
	JobType         string `json:"job_type"`
	ExperienceLevel string `json:"experience_level"`
	Remote          string `json:"remote"`
	SelectiveSearch bool   `json:"selective_search"`
	Company         string `json:"company"`
}

func searchRequestFrom(params entities.SearchParameters) searchRequest {
	return searchRequest{
		Location:        params.Location,
		Keyword:         params.Keyword,
		Country:         params.Country,
		TimeRange:       string(params.TimeRange),
		JobType:         string(params.JobType),
		ExperienceLevel: string(params.ExperienceLevel),
		Remote:          string(params.Remote),
		SelectiveSearch: params.SelectiveSearch,
		Company:         params.Company,
	}
}

func triggerParams(datasetID string, webhookURL string) url.Values {

	params := url.Values{}
	params.Add("dataset_id", datasetID)
	params.Add("endpoint", webhookURL)
	params.Add("format", "json")
	params.Add("uncompressed_webhook", "true")
	params.Add("include_errors", "true")
	params.Add("type", "discover_new")
	params.Add("discover_by", "keyword")
	return params
}
