package specparser

import "strings"

// UnitTable maps raw unit spellings to their canonical form.
// Lookups are exact: case and punctuation matter.
type UnitTable struct {
	aliases map[string]string
}

// NewUnitTable copies aliases into a table that is never mutated afterwards.
func NewUnitTable(aliases map[string]string) *UnitTable {
	m := make(map[string]string, len(aliases))
	for k, v := range aliases {
		m[k] = v
	}
	return &UnitTable{aliases: m}
}

// Normalize returns the canonical unit for raw. Unknown tokens pass through
// trimmed; an empty token stays empty.
func (t *UnitTable) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if canon, ok := t.aliases[raw]; ok {
		return canon
	}
	return raw
}

// DefaultUnits is the process-wide synonym table used by ParsePage.
var DefaultUnits = NewUnitTable(map[string]string{
	// power
	"kW": "kW", "KW": "kW", "kw": "kW", "Kw": "kW", "K.W.": "kW", "k.W.": "kW",
	"W": "W", "w": "W",
	"HP": "hp", "hp": "hp", "Hp": "hp", "H.P.": "hp", "bhp": "hp", "BHP": "hp",
	"kVA": "kVA", "KVA": "kVA", "kva": "kVA",
	// speed
	"RPM": "rpm", "rpm": "rpm", "Rpm": "rpm", "r/min": "rpm", "R/min": "rpm",
	"1/min": "rpm", "U/min": "rpm", "r.p.m.": "rpm",
	// temperature
	"°C": "degC", "ºC": "degC", "C": "degC", "degC": "degC", "deg.C": "degC",
	"°F": "degF", "degF": "degF",
	// electrical
	"V": "V", "v": "V", "VAC": "V", "Vac": "V", "VDC": "V", "Vdc": "V",
	"kV": "kV", "KV": "kV",
	"A": "A", "Amp": "A", "amp": "A", "Amps": "A", "amps": "A",
	"mA": "mA",
	"Hz": "Hz", "HZ": "Hz", "hz": "Hz",
	"Ω": "ohm", "ohm": "ohm", "Ohm": "ohm",
	"µF": "uF", "μF": "uF", "uF": "uF",
	// mechanical
	"Nm": "Nm", "NM": "Nm", "N.m": "Nm", "N·m": "Nm", "nm": "Nm",
	"kg": "kg", "KG": "kg", "Kg": "kg", "kgs": "kg",
	"kgm²": "kgm2", "kgm2": "kgm2", "kg.m²": "kgm2",
	"mm": "mm", "MM": "mm",
	"m": "m",
	"bar": "bar", "Bar": "bar",
	"dB": "dB", "dBA": "dBA", "dB(A)": "dBA",
	// ratios
	"%": "%", "pct": "%",
	// ingress protection
	"IP23": "IP", "IP44": "IP", "IP54": "IP", "IP55": "IP", "IP56": "IP",
	"IP65": "IP", "IP66": "IP", "IP67": "IP", "IP68": "IP",
})
