package models

import (
	"strings"
	"time"
)

// Category is the inspection category of a customer site.
type Category string

const (
	CategoryElectrical Category = "El-Kontroll"
	CategoryFireAlarm  Category = "Brannalarm"
	CategoryBoth       Category = "El-Kontroll + Brannalarm"
)

// GeocodeQuality describes how precise a coordinate pair is.
type GeocodeQuality string

const (
	QualityExact GeocodeQuality = "exact"
	QualityArea  GeocodeQuality = "area"
)

// Default inspection intervals in months.
const (
	DefaultElectricalIntervalMonths = 36
	DefaultFireIntervalMonths       = 12
	DefaultLegacyIntervalMonths     = 12
)

// Column names used by field-level updates.
const (
	ColName                     = "name"
	ColAddress                  = "address"
	ColPostalCode               = "postal_code"
	ColCity                     = "city"
	ColLatitude                 = "latitude"
	ColLongitude                = "longitude"
	ColCategory                 = "category"
	ColGeocodeQuality           = "geocode_quality"
	ColElectricalType           = "electrical_type"
	ColFireSystem               = "fire_system"
	ColFireOperationType        = "fire_operation_type"
	ColLastElectricalInspection = "last_electrical_inspection"
	ColNextElectricalInspection = "next_electrical_inspection"
	ColLastFireInspection       = "last_fire_inspection"
	ColNextFireInspection       = "next_fire_inspection"
)

// Customer is one customer site ("kunde"). Inspection dates are YYYY-MM-DD strings,
// empty when unknown.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// OrganizationID is the tenant this record belongs to for its whole lifetime.
	OrganizationID uint `gorm:"index;not null" json:"organization_id"`

	Name       string `gorm:"size:255;not null" json:"name"`
	Address    string `gorm:"size:500" json:"address,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`

	// Latitude and Longitude are either both set or both nil.
	Latitude       *float64        `json:"latitude,omitempty"`
	Longitude      *float64        `json:"longitude,omitempty"`
	GeocodeQuality *GeocodeQuality `gorm:"size:10" json:"geocode_quality,omitempty"`

	Category Category `gorm:"size:50" json:"category"`

	ElectricalType           string `gorm:"size:100" json:"electrical_type,omitempty"`
	LastElectricalInspection string `gorm:"size:10" json:"last_electrical_inspection,omitempty"`
	NextElectricalInspection string `gorm:"size:10" json:"next_electrical_inspection,omitempty"`
	ElectricalIntervalMonths *int   `json:"electrical_interval_months,omitempty"`

	FireSystem         string `gorm:"size:100" json:"fire_system,omitempty"`
	FireOperationType  string `gorm:"size:100" json:"fire_operation_type,omitempty"`
	LastFireInspection string `gorm:"size:10" json:"last_fire_inspection,omitempty"`
	NextFireInspection string `gorm:"size:10" json:"next_fire_inspection,omitempty"`
	FireIntervalMonths *int   `json:"fire_interval_months,omitempty"`

	// InspectionIntervalMonths predates the per-category intervals.
	InspectionIntervalMonths *int `json:"inspection_interval_months,omitempty"`
}

// TableName keeps the historical table name.
func (Customer) TableName() string { return "kunder" }

// HasCoordinates reports whether both latitude and longitude are set.
func (c *Customer) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// FullAddress returns "address, postal city" with empty parts left out.
func (c *Customer) FullAddress() string {
	place := strings.TrimSpace(strings.TrimSpace(c.PostalCode) + " " + strings.TrimSpace(c.City))
	addr := strings.TrimSpace(c.Address)
	switch {
	case addr == "":
		return place
	case place == "":
		return addr
	}
	return addr + ", " + place
}

// ElectricalInterval returns the electrical inspection interval in months.
func (c *Customer) ElectricalInterval() int {
	if c.ElectricalIntervalMonths != nil && *c.ElectricalIntervalMonths > 0 {
		return *c.ElectricalIntervalMonths
	}
	return DefaultElectricalIntervalMonths
}

// FireInterval returns the fire inspection interval in months, falling back to the
// legacy interval column before the default.
func (c *Customer) FireInterval() int {
	if c.FireIntervalMonths != nil && *c.FireIntervalMonths > 0 {
		return *c.FireIntervalMonths
	}
	if c.InspectionIntervalMonths != nil && *c.InspectionIntervalMonths > 0 {
		return *c.InspectionIntervalMonths
	}
	return DefaultFireIntervalMonths
}

// IncludesElectrical reports whether the category covers electrical inspection.
func (c Category) IncludesElectrical() bool {
	return c == CategoryElectrical || c == CategoryBoth
}

// IncludesFire reports whether the category covers fire alarm inspection.
func (c Category) IncludesFire() bool {
	return c == CategoryFireAlarm || c == CategoryBoth
}
