package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/eebc-chat/internal"
)

var fieldLabels = map[internal.ContextField]string{
	internal.FieldDistrict:            "District",
	internal.FieldBuildingType:        "Building type",
	internal.FieldIsNewBuilding:       "New building",
	internal.FieldFloorAreaM2:         "Floor area (m²)",
	internal.FieldElectricalDemandKVA: "Electrical demand (kVA)",
	internal.FieldCoolingCapacityKWth: "Cooling capacity (kWth)",
	internal.FieldHeatingCapacityKWth: "Heating capacity (kWth)",
	internal.FieldWWRPercent:          "WWR (%)",
	internal.FieldSkylightPercent:     "Skylight (%)",
	internal.FieldGlazingVLT:          "Glazing VLT",
	internal.FieldHVACType:            "HVAC type",
	internal.FieldOperatingHours:      "Operating hours",
}

var fieldPlaceholders = map[internal.ContextField]string{
	internal.FieldDistrict:            "e.g. Colombo",
	internal.FieldBuildingType:        "e.g. office, hotel, hospital",
	internal.FieldFloorAreaM2:         "e.g. 1200",
	internal.FieldElectricalDemandKVA: "e.g. 150",
	internal.FieldCoolingCapacityKWth: "e.g. 350",
	internal.FieldHeatingCapacityKWth: "e.g. 0",
	internal.FieldWWRPercent:          "e.g. 40",
	internal.FieldSkylightPercent:     "e.g. 5",
	internal.FieldGlazingVLT:          "e.g. 0.45",
	internal.FieldHVACType:            "e.g. VRF, chilled water",
	internal.FieldOperatingHours:      "e.g. 2600",
}

// triState labels for the new-building selector, indexed by raw value
var triStateOptions = []struct {
	label string
	raw   string
}{
	{"Unknown", ""},
	{"Yes", "true"},
	{"No", "false"},
}

// FieldLabel returns the human label of a building field
func FieldLabel(f internal.ContextField) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// drawer edits the building form. Every keystroke is written straight
// through to the form so the next send sees it.
type drawer struct {
	form   *internal.BuildingForm
	inputs map[internal.ContextField]textinput.Model
	choice int
	focus  int
}

func newDrawer(form *internal.BuildingForm) drawer {
	d := drawer{
		form:   form,
		inputs: make(map[internal.ContextField]textinput.Model, len(internal.ContextFields)),
	}
	for _, f := range internal.ContextFields {
		if f == internal.FieldIsNewBuilding {
			d.choice = triStateIndex(form.Get(f))
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldPlaceholders[f]
		ti.CharLimit = 64
		ti.Width = 28
		ti.SetValue(form.Get(f))
		d.inputs[f] = ti
	}
	return d
}

func triStateIndex(raw string) int {
	for i, opt := range triStateOptions {
		if opt.raw == strings.TrimSpace(raw) {
			return i
		}
	}
	return 0
}

func (d drawer) focused() internal.ContextField {
	return internal.ContextFields[d.focus]
}

// open syncs inputs from the form and focuses the current field
func (d drawer) open() (drawer, tea.Cmd) {
	for f, ti := range d.inputs {
		ti.SetValue(d.form.Get(f))
		d.inputs[f] = ti
	}
	d.choice = triStateIndex(d.form.Get(internal.FieldIsNewBuilding))
	return d.refocus()
}

func (d drawer) blur() drawer {
	for f, ti := range d.inputs {
		ti.Blur()
		d.inputs[f] = ti
	}
	return d
}

func (d drawer) refocus() (drawer, tea.Cmd) {
	d = d.blur()
	f := d.focused()
	ti, ok := d.inputs[f]
	if !ok {
		return d, nil
	}
	cmd := ti.Focus()
	d.inputs[f] = ti
	return d, cmd
}

func (d drawer) move(delta int) (drawer, tea.Cmd) {
	n := len(internal.ContextFields)
	d.focus = ((d.focus+delta)%n + n) % n
	return d.refocus()
}

func (d drawer) update(msg tea.KeyMsg) (drawer, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return d.move(1)
	case "shift+tab", "up":
		return d.move(-1)
	}

	f := d.focused()
	if f == internal.FieldIsNewBuilding {
		switch msg.String() {
		case "left", "h":
			d.choice = (d.choice + len(triStateOptions) - 1) % len(triStateOptions)
		case "right", "l", " ", "enter":
			d.choice = (d.choice + 1) % len(triStateOptions)
		default:
			return d, nil
		}
		_ = d.form.Set(f, triStateOptions[d.choice].raw)
		return d, nil
	}

	ti := d.inputs[f]
	var cmd tea.Cmd
	ti, cmd = ti.Update(msg)
	d.inputs[f] = ti
	_ = d.form.Set(f, ti.Value())
	return d, cmd
}

func (d drawer) view(width int) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Building details") + "\n")
	sb.WriteString(subtleStyle.Render("Optional. Blank or invalid values are left out.") + "\n\n")

	for i, f := range internal.ContextFields {
		label := fmt.Sprintf("%-24s", FieldLabel(f))
		if i == d.focus {
			label = focusedLabelStyle.Render("> " + label)
		} else {
			label = subtleStyle.Render("  " + label)
		}

		var value string
		if f == internal.FieldIsNewBuilding {
			opts := make([]string, len(triStateOptions))
			for j, opt := range triStateOptions {
				if j == d.choice {
					opts[j] = focusedLabelStyle.Render("[" + opt.label + "]")
				} else {
					opts[j] = subtleStyle.Render(" " + opt.label + " ")
				}
			}
			value = strings.Join(opts, " ")
		} else {
			value = d.inputs[f].View()
		}
		sb.WriteString(label + " " + value + "\n")
	}
	sb.WriteString("\n" + subtleStyle.Render("tab/shift+tab move · ←/→ toggle · esc close"))

	w := width - 2
	if w < 40 {
		w = 40
	}
	return panelStyle.Width(w).Render(sb.String())
}
