package entities

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type TimeRange string

const (
	Past24Hours TimeRange = "Past 24 hours"
	PastWeek    TimeRange = "Past week"
	PastMonth   TimeRange = "Past month"
	AnyTime     TimeRange = "Any time"
)

func ToTimeRange(s string) (TimeRange, error) {
	switch s {
	case string(Past24Hours):
		return Past24Hours, nil
	case string(PastWeek):
		return PastWeek, nil
	case string(PastMonth):
		return PastMonth, nil
	case string(AnyTime):
		return AnyTime, nil
	default:
		return "", errors.New("invalid time range")
	}
}

type JobType string

const (
	FullTime  JobType = "Full-time"
	PartTime  JobType = "Part-time"
	Contract  JobType = "Contract"
	Temporary JobType = "Temporary"
	Volunteer JobType = "Volunteer"
)

func ToJobType(s string) (JobType, error) {
	switch s {
	case string(FullTime):
		return FullTime, nil
	case string(PartTime):
		return PartTime, nil
	case string(Contract):
		return Contract, nil
	case string(Temporary):
		return Temporary, nil
	case string(Volunteer):
		return Volunteer, nil
	default:
		return "", errors.New("invalid job type")
	}
}

type ExperienceLevel string

const (
	Internship ExperienceLevel = "Internship"
	EntryLevel ExperienceLevel = "Entry level"
	Associate  ExperienceLevel = "Associate"
	MidSenior  ExperienceLevel = "Mid-Senior level"
	Director   ExperienceLevel = "Director"
)

func ToExperienceLevel(s string) (ExperienceLevel, error) {
	switch s {
	case string(Internship):
		return Internship, nil
	case string(EntryLevel):
		return EntryLevel, nil
	case string(Associate):
		return Associate, nil
	case string(MidSenior):
		return MidSenior, nil
	case string(Director):
		return Director, nil
	default:
		return "", errors.New("invalid experience level")
	}
}

type RemoteMode string

const (
	Remote RemoteMode = "Remote"
	OnSite RemoteMode = "On-site"
	Hybrid RemoteMode = "Hybrid"
)

func ToRemoteMode(s string) (RemoteMode, error) {
	switch s {
	case string(Remote):
		return Remote, nil
	case string(OnSite):
		return OnSite, nil
	case string(Hybrid):
		return Hybrid, nil
	default:
		return "", errors.New("invalid remote mode")
	}
}

var validate = validator.New()

// SearchParameters describes one job search as the user configured it.
// Built once per submitted form and sent verbatim to the collector.
type SearchParameters struct {
	Location        string          `json:"location" validate:"required"`
	Keyword         string          `json:"keyword" validate:"required"`
	Country         string          `json:"country" validate:"required,len=2"`
	TimeRange       TimeRange       `json:"time_range" validate:"required"`
	JobType         JobType         `json:"job_type" validate:"required"`
	ExperienceLevel ExperienceLevel `json:"experience_level" validate:"required"`
	Remote          RemoteMode      `json:"remote" validate:"required"`
	SelectiveSearch bool            `json:"selective_search"`
	Company         string          `json:"company"`
}

func (p SearchParameters) Validate() error {

	if err := validate.Struct(p); err != nil {
		return errors.Wrap(err, "invalid search parameters")
	}

	if _, err := ToTimeRange(string(p.TimeRange)); err != nil {
		return err
	}

	if _, err := ToJobType(string(p.JobType)); err != nil {
		return err
	}

	if _, err := ToExperienceLevel(string(p.ExperienceLevel)); err != nil {
		return err
	}

	if _, err := ToRemoteMode(string(p.Remote)); err != nil {
		return err
	}

	return nil
}
