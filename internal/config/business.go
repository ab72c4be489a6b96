package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // profile time zones must resolve in minimal containers

	"gopkg.in/yaml.v3"
)

// Business is the company identity used in emails and error messages.
//
// Example profile:
//
//	name: Diaz Airflow Solutions Inc.
//	phone: (240) 432-7489
//	email: info@diazairflowsolutions.com
//	timezone: America/New_York
//	services:
//	  - AC Repair
//	  - Heating Repair
type Business struct {
	Name     string   `yaml:"name"`
	Phone    string   `yaml:"phone"`
	Email    string   `yaml:"email"`
	Address  string   `yaml:"address"`
	Website  string   `yaml:"website"`
	Timezone string   `yaml:"timezone"`
	Services []string `yaml:"services"`

	loc *time.Location
}

// DefaultBusiness returns the built-in profile.
func DefaultBusiness() Business {
	return Business{
		Name:     "Diaz Airflow Solutions Inc.",
		Phone:    "(240) 432-7489",
		Email:    "info@diazairflowsolutions.com",
		Address:  "13133 Beaver Terrace, Rockville, MD 20853",
		Website:  "https://www.diazairflowsolutions.com",
		Timezone: "America/New_York",
		Services: []string{
			"AC Installation",
			"AC Repair",
			"Heating Installation",
			"Heating Repair",
			"Maintenance",
			"Air Quality",
			"Emergency Service",
		},
	}
}

// Location returns the profile's time zone, UTC if unset.
func (b Business) Location() *time.Location {
	if b.loc == nil {
		return time.UTC
	}
	return b.loc
}

// LoadBusiness reads the YAML profile at path over the defaults. An empty
// path returns the defaults. Fields absent from the file keep their
// default value.
func LoadBusiness(path string) (Business, error) {
	b := DefaultBusiness()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return b, fmt.Errorf("BUSINESS_PROFILE_PATH: %w", err)
		}
		var file Business
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return b, fmt.Errorf("BUSINESS_PROFILE_PATH: parse %s: %w", path, err)
		}
		merge(&b, file)
	}

	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Phone) == "" {
		return b, fmt.Errorf("business profile: name and phone are required")
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return b, fmt.Errorf("business profile: timezone %q: %w", b.Timezone, err)
	}
	b.loc = loc
	return b, nil
}

func merge(dst *Business, src Business) {
	set := func(d *string, s string) {
		if s = strings.TrimSpace(s); s != "" {
			*d = s
		}
	}
	set(&dst.Name, src.Name)
	set(&dst.Phone, src.Phone)
	set(&dst.Email, src.Email)
	set(&dst.Address, src.Address)
	set(&dst.Website, src.Website)
	set(&dst.Timezone, src.Timezone)
	if len(src.Services) > 0 {
		dst.Services = src.Services
	}
}
