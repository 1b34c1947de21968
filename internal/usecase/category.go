package usecase

import "strings"

// Category identifies the product family a catalog payload belongs to.
// The zero value is CategoryGeneric.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryBattery
	CategoryInverter
	CategoryHybridInverter
	CategoryStorageSystem
	CategorySolarModule
	CategoryChargeController
	CategoryVoltageConverter
	CategoryMicroInverter
	CategoryStringInverter
	CategoryPowerStation
	CategoryAccessory
)

// ParseCategory maps a produkttyp payload value onto a Category. Unknown
// and empty values fall back to CategoryGeneric.
func ParseCategory(produkttyp string) Category {
	switch strings.ToLower(strings.TrimSpace(produkttyp)) {
	case "batterie":
		return CategoryBattery
	case "wechselrichter":
		return CategoryInverter
	case "hybridwechselrichter":
		return CategoryHybridInverter
	case "speichersystem":
		return CategoryStorageSystem
	case "solarmodul":
		return CategorySolarModule
	case "laderegler":
		return CategoryChargeController
	case "spannungswandler":
		return CategoryVoltageConverter
	case "mikrowechselrichter":
		return CategoryMicroInverter
	case "stringwechselrichter":
		return CategoryStringInverter
	case "powerstation":
		return CategoryPowerStation
	case "zubehoer", "zubehör":
		return CategoryAccessory
	default:
		return CategoryGeneric
	}
}

// String returns the canonical produkttyp value for the category.
func (c Category) String() string {
	switch c {
	case CategoryBattery:
		return "batterie"
	case CategoryInverter:
		return "wechselrichter"
	case CategoryHybridInverter:
		return "hybridwechselrichter"
	case CategoryStorageSystem:
		return "speichersystem"
	case CategorySolarModule:
		return "solarmodul"
	case CategoryChargeController:
		return "laderegler"
	case CategoryVoltageConverter:
		return "spannungswandler"
	case CategoryMicroInverter:
		return "mikrowechselrichter"
	case CategoryStringInverter:
		return "stringwechselrichter"
	case CategoryPowerStation:
		return "powerstation"
	case CategoryAccessory:
		return "zubehoer"
	default:
		return "produkt"
	}
}

// labelTable returns the hand-maintained key-to-label table for the
// category. Keys missing from the table get a derived label instead.
func (c Category) labelTable() map[string]string {
	switch c {
	case CategoryBattery:
		return batteryLabels
	case CategoryInverter:
		return inverterLabels
	case CategoryHybridInverter:
		return hybridInverterLabels
	case CategoryStorageSystem:
		return storageSystemLabels
	case CategorySolarModule:
		return solarModuleLabels
	case CategoryChargeController:
		return chargeControllerLabels
	case CategoryVoltageConverter:
		return voltageConverterLabels
	case CategoryMicroInverter:
		return microInverterLabels
	case CategoryStringInverter:
		return stringInverterLabels
	case CategoryPowerStation:
		return powerStationLabels
	case CategoryAccessory:
		return accessoryLabels
	default:
		return genericLabels
	}
}

// Display labels for the well-known specification keys of each category.
// The catalog indexer writes these keys lowercased with ASCII umlauts.
var (
	batteryLabels = map[string]string{
		"kapazitaet_kwh":     "Kapazität (kWh)",
		"kapazitaet_ah":      "Kapazität (Ah)",
		"spannung_v":         "Spannung (V)",
		"zelltyp":            "Zelltyp",
		"zyklenfestigkeit":   "Zyklenfestigkeit",
		"entladetiefe_dod":   "Entladetiefe (DoD)",
		"bms":                "BMS (Batterie-Management)",
		"max_ladestrom_a":    "Max. Ladestrom (A)",
		"max_entladestrom_a": "Max. Entladestrom (A)",
		"heizung":            "Integrierte Heizung",
		"kommunikation":      "Kommunikation",
		"parallelschaltung":  "Parallelschaltung",
		"betriebstemperatur": "Betriebstemperatur",
	}

	inverterLabels = map[string]string{
		"nennleistung_w":     "Nennleistung (W)",
		"max_leistung_w":     "Max. Leistung (W)",
		"eingangsspannung_v": "Eingangsspannung (V)",
		"ausgangsspannung_v": "Ausgangsspannung (V)",
		"wirkungsgrad":       "Wirkungsgrad",
		"phasen":             "Phasen",
		"frequenz_hz":        "Frequenz (Hz)",
		"mppt_anzahl":        "Anzahl MPP-Tracker",
		"notstromfunktion":   "Notstromfunktion",
		"reiner_sinus":       "Reiner Sinus",
	}

	hybridInverterLabels = map[string]string{
		"nennleistung_w":     "Nennleistung (W)",
		"max_pv_leistung_wp": "Max. PV-Leistung (Wp)",
		"batteriespannung_v": "Batteriespannung (V)",
		"max_ladestrom_a":    "Max. Ladestrom (A)",
		"phasen":             "Phasen",
		"mppt_anzahl":        "Anzahl MPP-Tracker",
		"notstromfunktion":   "Notstromfunktion",
		"wirkungsgrad":       "Wirkungsgrad",
		"parallelfaehig":     "Parallelfähig",
	}

	storageSystemLabels = map[string]string{
		"speicherkapazitaet_kwh":    "Speicherkapazität (kWh)",
		"nutzbare_kapazitaet_kwh":   "Nutzbare Kapazität (kWh)",
		"wechselrichter_integriert": "Wechselrichter integriert",
		"wechselrichter_leistung_w": "Wechselrichter-Leistung (W)",
		"erweiterbar":               "Erweiterbar",
		"notstromfaehig":            "Notstromfähig",
		"phasen":                    "Phasen",
		"zyklenfestigkeit":          "Zyklenfestigkeit",
		"zelltyp":                   "Zelltyp",
	}

	solarModuleLabels = map[string]string{
		"leistung_wp":        "Leistung (Wp)",
		"wirkungsgrad":       "Wirkungsgrad",
		"zelltyp":            "Zelltyp",
		"leerlaufspannung_v": "Leerlaufspannung (V)",
		"kurzschlussstrom_a": "Kurzschlussstrom (A)",
		"bifazial":           "Bifazial",
		"glas_glas":          "Glas-Glas-Ausführung",
		"rahmenfarbe":        "Rahmenfarbe",
		"abmessungen":        "Abmessungen",
	}

	chargeControllerLabels = map[string]string{
		"max_ladestrom_a":   "Max. Ladestrom (A)",
		"systemspannung_v":  "Systemspannung (V)",
		"mppt":              "MPPT",
		"max_pv_spannung_v": "Max. PV-Spannung (V)",
		"anschluss":         "Anschluss",
		"display":           "Display",
	}

	voltageConverterLabels = map[string]string{
		"eingangsspannung_v":   "Eingangsspannung (V)",
		"ausgangsspannung_v":   "Ausgangsspannung (V)",
		"dauerleistung_w":      "Dauerleistung (W)",
		"spitzenleistung_w":    "Spitzenleistung (W)",
		"wirkungsgrad":         "Wirkungsgrad",
		"galvanische_trennung": "Galvanische Trennung",
	}

	microInverterLabels = map[string]string{
		"max_leistung_w":     "Max. Leistung (W)",
		"ausgangsleistung_w": "Ausgangsleistung (W)",
		"module_anzahl":      "Anzahl Module",
		"wifi":               "WLAN",
		"schattenmanagement": "Schattenmanagement",
		"einspeisesteckdose": "Einspeisesteckdose",
	}

	stringInverterLabels = map[string]string{
		"nennleistung_w":         "Nennleistung (W)",
		"max_strings":            "Anzahl Strings",
		"mppt_anzahl":            "Anzahl MPP-Tracker",
		"max_eingangsspannung_v": "Max. Eingangsspannung (V)",
		"startspannung_v":        "Startspannung (V)",
		"wirkungsgrad":           "Wirkungsgrad",
	}

	powerStationLabels = map[string]string{
		"kapazitaet_wh":      "Kapazität (Wh)",
		"ausgangsleistung_w": "Ausgangsleistung (W)",
		"solareingang_w":     "Solareingang (W)",
		"usb_anschluesse":    "USB-Anschlüsse",
		"steckdosen_230v":    "230V-Steckdosen",
		"ladezeit_h":         "Ladezeit (h)",
	}

	accessoryLabels = map[string]string{
		"material":        "Material",
		"laenge_m":        "Länge (m)",
		"querschnitt_mm2": "Querschnitt (mm²)",
		"steckertyp":      "Steckertyp",
		"farbe":           "Farbe",
	}

	genericLabels = map[string]string{
		"modell":         "Modell",
		"garantie_jahre": "Garantie (Jahre)",
		"farbe":          "Farbe",
	}
)
