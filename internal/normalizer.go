package internal

import (
	"math"
	"strconv"
	"strings"
)

// ContextField names one building attribute of the details form
type ContextField string

const (
	FieldDistrict            ContextField = "district"
	FieldBuildingType        ContextField = "building_type"
	FieldIsNewBuilding       ContextField = "is_new_building"
	FieldFloorAreaM2         ContextField = "floor_area_m2"
	FieldElectricalDemandKVA ContextField = "electrical_demand_kva"
	FieldCoolingCapacityKWth ContextField = "cooling_capacity_kwth"
	FieldHeatingCapacityKWth ContextField = "heating_capacity_kwth"
	FieldWWRPercent          ContextField = "wwr_percent"
	FieldSkylightPercent     ContextField = "skylight_percent"
	FieldGlazingVLT          ContextField = "glazing_vlt"
	FieldHVACType            ContextField = "hvac_type"
	FieldOperatingHours      ContextField = "operating_hours"
)

// ContextFields lists every recognized field in form order
var ContextFields = []ContextField{
	FieldDistrict,
	FieldBuildingType,
	FieldIsNewBuilding,
	FieldFloorAreaM2,
	FieldElectricalDemandKVA,
	FieldCoolingCapacityKWth,
	FieldHeatingCapacityKWth,
	FieldWWRPercent,
	FieldSkylightPercent,
	FieldGlazingVLT,
	FieldHVACType,
	FieldOperatingHours,
}

// ParseContextField resolves a field name, accepting dashes for underscores
func ParseContextField(name string) (ContextField, bool) {
	f := ContextField(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if !f.Known() {
		return "", false
	}
	return f, true
}

// RawContextForm holds the unvalidated string values typed by the user.
// An empty string means unset.
type RawContextForm map[ContextField]string

// NewRawContextForm returns a form with every field present and empty
func NewRawContextForm() RawContextForm {
	raw := make(RawContextForm, len(ContextFields))
	for _, f := range ContextFields {
		raw[f] = ""
	}
	return raw
}

// Clone returns an independent copy of the form
func (r RawContextForm) Clone() RawContextForm {
	out := make(RawContextForm, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// BuildingContext is the normalized payload sent with each message.
// Nil pointers are absent keys.
type BuildingContext struct {
	District            *string  `json:"district,omitempty" yaml:"district,omitempty"`
	BuildingType        *string  `json:"building_type,omitempty" yaml:"building_type,omitempty"`
	IsNewBuilding       *bool    `json:"is_new_building,omitempty" yaml:"is_new_building,omitempty"`
	FloorAreaM2         *float64 `json:"floor_area_m2,omitempty" yaml:"floor_area_m2,omitempty"`
	ElectricalDemandKVA *float64 `json:"electrical_demand_kva,omitempty" yaml:"electrical_demand_kva,omitempty"`
	CoolingCapacityKWth *float64 `json:"cooling_capacity_kwth,omitempty" yaml:"cooling_capacity_kwth,omitempty"`
	HeatingCapacityKWth *float64 `json:"heating_capacity_kwth,omitempty" yaml:"heating_capacity_kwth,omitempty"`
	WWRPercent          *float64 `json:"wwr_percent,omitempty" yaml:"wwr_percent,omitempty"`
	SkylightPercent     *float64 `json:"skylight_percent,omitempty" yaml:"skylight_percent,omitempty"`
	GlazingVLT          *float64 `json:"glazing_vlt,omitempty" yaml:"glazing_vlt,omitempty"`
	HVACType            *string  `json:"hvac_type,omitempty" yaml:"hvac_type,omitempty"`
	OperatingHours      *string  `json:"operating_hours,omitempty" yaml:"operating_hours,omitempty"`
}

// Normalize coerces a raw form into a BuildingContext. Fields that fail
// coercion are dropped. It returns nil when no field is usable so callers
// can tell "no context" apart from an empty one.
func Normalize(raw RawContextForm) *BuildingContext {
	var ctx BuildingContext
	n := 0

	str := func(f ContextField) *string {
		v := strings.TrimSpace(raw[f])
		if v == "" {
			return nil
		}
		n++
		return &v
	}
	num := func(f ContextField) *float64 {
		v, ok := toFiniteNumber(raw[f])
		if !ok {
			return nil
		}
		n++
		return &v
	}

	ctx.District = str(FieldDistrict)
	ctx.BuildingType = str(FieldBuildingType)
	if b, ok := toBool(raw[FieldIsNewBuilding]); ok {
		ctx.IsNewBuilding = &b
		n++
	}
	ctx.FloorAreaM2 = num(FieldFloorAreaM2)
	ctx.ElectricalDemandKVA = num(FieldElectricalDemandKVA)
	ctx.CoolingCapacityKWth = num(FieldCoolingCapacityKWth)
	ctx.HeatingCapacityKWth = num(FieldHeatingCapacityKWth)
	ctx.WWRPercent = num(FieldWWRPercent)
	ctx.SkylightPercent = num(FieldSkylightPercent)
	ctx.GlazingVLT = num(FieldGlazingVLT)
	ctx.HVACType = str(FieldHVACType)
	ctx.OperatingHours = str(FieldOperatingHours)

	if n == 0 {
		return nil
	}
	return &ctx
}

// Fields returns the populated keys of the context in form order as
// display strings. A nil context yields nil.
func (c *BuildingContext) Fields() []KeyValue {
	if c == nil {
		return nil
	}
	var out []KeyValue
	addStr := func(f ContextField, v *string) {
		if v != nil {
			out = append(out, KeyValue{Key: string(f), Value: *v})
		}
	}
	addNum := func(f ContextField, v *float64) {
		if v != nil {
			out = append(out, KeyValue{Key: string(f), Value: strconv.FormatFloat(*v, 'f', -1, 64)})
		}
	}
	addStr(FieldDistrict, c.District)
	addStr(FieldBuildingType, c.BuildingType)
	if c.IsNewBuilding != nil {
		out = append(out, KeyValue{Key: string(FieldIsNewBuilding), Value: strconv.FormatBool(*c.IsNewBuilding)})
	}
	addNum(FieldFloorAreaM2, c.FloorAreaM2)
	addNum(FieldElectricalDemandKVA, c.ElectricalDemandKVA)
	addNum(FieldCoolingCapacityKWth, c.CoolingCapacityKWth)
	addNum(FieldHeatingCapacityKWth, c.HeatingCapacityKWth)
	addNum(FieldWWRPercent, c.WWRPercent)
	addNum(FieldSkylightPercent, c.SkylightPercent)
	addNum(FieldGlazingVLT, c.GlazingVLT)
	addStr(FieldHVACType, c.HVACType)
	addStr(FieldOperatingHours, c.OperatingHours)
	return out
}

// KeyValue is a display pair
type KeyValue struct {
	Key   string
	Value string
}

func toFiniteNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func toBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
