package term

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the injectable vocabulary the normalizer and variant
// generator work from. All fields are plain data so alternate lexicons can
// be loaded from YAML for other specialties without touching the engine.
type Lexicon struct {
	// Abbreviations maps clinical shorthand to plain words
	// (e.g. "BPD" -> "biparietal diameter").
	Abbreviations map[string]string `yaml:"abbreviations"`

	// SoftContext lists tokens that boost a candidate display during the
	// per-variant prefilter but never hard-restrict it.
	SoftContext []string `yaml:"soft_context"`

	// Families maps anatomical/measurement families to LOINC-style display
	// phrasings. Matching is by substring against the raw and normalized
	// term; "{match}" and "{Match}" in a phrase are replaced with the
	// matched token (lower/title case).
	Families []FamilyTemplate `yaml:"families"`

	// Qualitative maps presence/abnormality intents to presence and
	// morphology phrasings. Matching is by substring against the raw term.
	Qualitative []QualitativeTemplate `yaml:"qualitative"`

	// Hints supplies hand-curated known-good display phrasings keyed by the
	// unit-stripped, lowercased term (and its whitespace-collapsed form).
	Hints map[string][]string `yaml:"hints"`
}

// FamilyTemplate maps a set of trigger substrings to canonical phrasings.
type FamilyTemplate struct {
	Match   []string `yaml:"match"`
	Phrases []string `yaml:"phrases"`
}

// QualitativeTemplate maps one trigger substring to canonical phrasings.
type QualitativeTemplate struct {
	Match   string   `yaml:"match"`
	Phrases []string `yaml:"phrases"`
}

// LoadLexicon reads a Lexicon from a YAML file. Missing sections fall back
// to the defaults, so a file may override just the hints or just the
// abbreviation table.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	def := DefaultLexicon()
	if lx.Abbreviations == nil {
		lx.Abbreviations = def.Abbreviations
	}
	if lx.SoftContext == nil {
		lx.SoftContext = def.SoftContext
	}
	if lx.Families == nil {
		lx.Families = def.Families
	}
	if lx.Qualitative == nil {
		lx.Qualitative = def.Qualitative
	}
	if lx.Hints == nil {
		lx.Hints = def.Hints
	}
	return &lx, nil
}

// expand returns the plain-word expansion for an abbreviation, or the input
// unchanged when no entry exists. Lookup is case-insensitive.
func (lx *Lexicon) expand(token string) string {
	if words, ok := lx.Abbreviations[strings.ToUpper(strings.TrimSpace(token))]; ok {
		return words
	}
	return strings.TrimSpace(token)
}

// DefaultLexicon returns the obstetric-ultrasound vocabulary the tool ships
// with.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Abbreviations: map[string]string{
			"BPD": "biparietal diameter",
			"HC":  "head circumference",
			"AC":  "abdominal circumference",
			"FL":  "femur length",
			"EFW": "estimated fetal weight",
			"FHR": "fetal heart rate",
		},
		SoftContext: []string{"fetal", "fetus", "ultrasound", "us", "pregnancy", "obstetric"},
		Families: []FamilyTemplate{
			{
				Match: []string{"biparietal diameter", "bpd"},
				Phrases: []string{
					"Head Diameter.biparietal [Length] fetus US",
					"Head biparietal diameter [Length] fetus US",
					"Fetal head biparietal diameter [Length] US",
				},
			},
			{
				Match:   []string{"head circumference", "hc"},
				Phrases: []string{"Head [Circumference] fetus US"},
			},
			{
				Match: []string{"abdominal circumference", "ac"},
				Phrases: []string{
					"Abdomen [Circumference] fetus US",
					"Abdominal circumference fetus US",
				},
			},
			{
				Match: []string{"femur", "humerus", "radius", "ulna", "tibia", "fibula"},
				Phrases: []string{
					"{Match} diaphysis fetus [Length] US",
					"Fetal {match} length [Length] US",
				},
			},
			{
				Match: []string{"cerebellum"},
				Phrases: []string{
					"Cerebellum fetus [Diameter] US",
					"Cerebellum Diameter transverse fetus US",
				},
			},
			{
				Match: []string{"cisterna magna"},
				Phrases: []string{
					"Cisterna magna fetus [Diameter] US",
					"Fetal cisterna magna sagittal diameter US",
				},
			},
			{
				Match: []string{"estimated fetal weight", "efw"},
				Phrases: []string{
					"Estimated fetal weight [Mass] US",
					"Fetal body weight [Mass] US",
					"Fetus body weight [Mass] US",
					"EFW [Mass] US",
				},
			},
			{
				Match: []string{"fetal heart rate", "fhr"},
				Phrases: []string{
					"Fetal heart rate [Rate] US",
					"Fetal heart rate US",
					"Fetal heart rate by auscultation",
					"Fetal heart rate mean 10 minutes",
					"Fetal heart rate reactivity",
				},
			},
		},
		Qualitative: []QualitativeTemplate{
			{
				Match: "placenta appearance",
				Phrases: []string{
					"Placenta morphology [Text] US",
					"Placenta abnormality [Presence] fetus US",
				},
			},
			{
				Match: "heart abnormal",
				Phrases: []string{
					"Cardiac abnormality [Presence] fetus US",
					"Heart anomaly [Presence] fetus US",
				},
			},
			{
				Match: "head abnormal",
				Phrases: []string{
					"Head abnormality [Presence] fetus US",
					"Cranial abnormality [Presence] fetus US",
				},
			},
			{
				Match: "face/neck abnormal",
				Phrases: []string{
					"Face abnormality [Presence] fetus US",
					"Neck abnormality [Presence] fetus US",
					"Facial anomaly [Presence] fetus",
				},
			},
			{
				Match: "spine abnormal",
				Phrases: []string{
					"Spinal abnormality [Presence] fetus US",
					"Spine anomaly [Presence] fetus",
				},
			},
			{
				Match: "genitalia normal",
				Phrases: []string{
					"Genitalia normal [Presence] fetus",
					"Genitalia abnormality [Presence] fetus",
				},
			},
		},
		Hints: map[string][]string{
			"hc/ac": {
				"Head circumference/Abdominal circumference derived by US",
				"Head circumference/Abdominal circumference derived by ultrasound",
			},
			"fl/ac": {
				"Femur length/Abdominal circumference derived by US",
				"Femur length/Abdominal circumference derived by ultrasound",
			},
			"fl/bpd": {
				"Femur length/Biparietal diameter derived by US",
				"Femur length/Biparietal diameter derived by ultrasound",
			},
			"efw": {
				"Estimated fetal weight [Mass] US",
				"Fetal body weight [Mass] US",
				"Fetus body weight [Mass] US",
				"EFW [Mass] US",
			},
			"placenta appearance": {
				"Placenta morphology [Text] US",
				"Placenta structure [Presence] fetus US",
				"Placenta abnormality [Presence] fetus US",
			},
			"heart abnormal": {
				"Cardiac abnormality [Presence] fetus US",
				"Heart anomaly [Presence] fetus US",
			},
			"head abnormal": {
				"Head abnormality [Presence] fetus US",
				"Cranial abnormality [Presence] fetus US",
			},
			"face/neck abnormal": {
				"Face abnormality [Presence] fetus US",
				"Neck abnormality [Presence] fetus US",
				"Facial anomaly [Presence] fetus",
			},
			"spine abnormal": {
				"Spinal abnormality [Presence] fetus US",
				"Spine anomaly [Presence] fetus",
			},
			"genitalia normal": {
				"Genitalia normal [Presence] fetus",
				"Genitalia abnormality [Presence] fetus",
			},
		},
	}
}

// DefaultTerms is the obstetric ultrasound worksheet the tool resolves when
// no terms are given on the command line.
var DefaultTerms = []string{
	"Gestational Age",
	"BPD (cm)", "HC (cm)", "AC (cm)", "Femur (cm)",
	"Cerebellum (cm)", "Cisterna Magna (mm)",
	"Humerus (cm)", "Radius (cm)", "Ulna (cm)", "Tibia (cm)", "Fibula (cm)",
	"HC/AC", "FL/AC", "FL/BPD",
	"EFW (g)", "EFW Percentile", "FHR (bpm)",
	"Presentation", "Placenta Appearance",
	"Heart Abnormal", "Head Abnormal", "Face/Neck Abnormal",
	"Spine Abnormal", "Genitalia Normal",
}
