package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Checklist Metadata Blob
// =============================================================================

// TemperatureZone names one of the four recorded temperature readings.
type TemperatureZone string

const (
	ZoneGarage      TemperatureZone = "garage"
	ZoneMainFloor   TemperatureZone = "mainFloor"
	ZoneSecondFloor TemperatureZone = "secondFloor"
	ZoneThirdFloor  TemperatureZone = "thirdFloor"
)

// Zones lists the temperature zones in display order.
var Zones = []TemperatureZone{ZoneGarage, ZoneMainFloor, ZoneSecondFloor, ZoneThirdFloor}

// Temperatures is the nested, authoritative temperature object. The flat
// legacy fields on ChecklistMeta are read as fallback only.
type Temperatures struct {
	Garage      *string `json:"garage"`
	MainFloor   *string `json:"mainFloor"`
	SecondFloor *string `json:"secondFloor"`
	ThirdFloor  *string `json:"thirdFloor"`
}

// ChecklistMeta is the denormalized snapshot stored as JSON on a
// checklist's notes column. It is frozen at submission time: later edits
// to the relational client/property/inspector rows do not rewrite past
// checklists. Optional fields serialize as explicit nulls so partial
// readers of the column stay correct.
type ChecklistMeta struct {
	ClientID        *string       `json:"clientId"`
	PropertyID      *string       `json:"propertyId"`
	ClientName      *string       `json:"clientName"`
	Address         *string       `json:"address"`
	Inspector       *string       `json:"inspector"`
	InspectorID     *string       `json:"inspectorId"`
	InspectorEmail  *string       `json:"inspectorEmail"`
	InspectorPhone  *string       `json:"inspectorPhone"`
	Phone           *string       `json:"phone"`
	Email           *string       `json:"email"`
	Comments        *string       `json:"comments"`
	ItemSummary     *string       `json:"itemSummary"`
	GarageTemp      *string       `json:"garageTemp"`
	MainFloorTemp   *string       `json:"mainFloorTemp"`
	SecondFloorTemp *string       `json:"secondFloorTemp"`
	ThirdFloorTemp  *string       `json:"thirdFloorTemp"`
	EmailSentAt     *string       `json:"emailSentAt"`
	EmailSentTo     *string       `json:"emailSentTo"`
	Temperatures    *Temperatures `json:"temperatures"`
}

// DecodeMeta parses the metadata blob from a checklist's notes column.
// Absent or malformed input decodes to the zero record; the returned error
// is informational so callers can log it, and is never fatal.
func DecodeMeta(raw *string) (ChecklistMeta, error) {
	var meta ChecklistMeta
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(*raw), &meta); err != nil {
		return ChecklistMeta{}, fmt.Errorf("decode checklist metadata: %w", err)
	}
	return meta, nil
}

// Encode serializes the record back to its JSON form. Every decoded key is
// written, including explicit nulls.
func (m ChecklistMeta) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode checklist metadata: %w", err)
	}
	return string(data), nil
}

// Temperature resolves a zone reading: the nested temperatures object wins
// when present and non-blank, then the legacy flat field, else nil. Blank
// strings (after trim) count as absent.
func (m ChecklistMeta) Temperature(zone TemperatureZone) *string {
	if m.Temperatures != nil {
		if v := presentValue(m.Temperatures.zoneValue(zone)); v != nil {
			return v
		}
	}
	return presentValue(m.legacyTemp(zone))
}

// HasTemperatures reports whether at least one zone has a usable reading.
func (m ChecklistMeta) HasTemperatures() bool {
	for _, zone := range Zones {
		if m.Temperature(zone) != nil {
			return true
		}
	}
	return false
}

func (t *Temperatures) zoneValue(zone TemperatureZone) *string {
	switch zone {
	case ZoneGarage:
		return t.Garage
	case ZoneMainFloor:
		return t.MainFloor
	case ZoneSecondFloor:
		return t.SecondFloor
	case ZoneThirdFloor:
		return t.ThirdFloor
	}
	return nil
}

func (m ChecklistMeta) legacyTemp(zone TemperatureZone) *string {
	switch zone {
	case ZoneGarage:
		return m.GarageTemp
	case ZoneMainFloor:
		return m.MainFloorTemp
	case ZoneSecondFloor:
		return m.SecondFloorTemp
	case ZoneThirdFloor:
		return m.ThirdFloorTemp
	}
	return nil
}

func presentValue(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
