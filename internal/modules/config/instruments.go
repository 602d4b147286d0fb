package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Source string

const (
	SourceClose Source = "close"
	SourceOHLC4 Source = "ohlc4"
)

// Instrument — настройки конверта для одного инструмента.
type Instrument struct {
	Symbol       string    `yaml:"symbol"`
	Src          Source    `yaml:"src"`
	MABaseWindow int       `yaml:"ma_base_window"`
	Envelopes    []float64 `yaml:"envelopes"`
	Size         float64   `yaml:"size"`  // доля equity на инструмент
	Sides        []string  `yaml:"sides"` // long / short
}

// Allows — разрешена ли сторона позиции (long/short).
func (i Instrument) Allows(side string) bool {
	for _, s := range i.Sides {
		if s == side {
			return true
		}
	}
	return false
}

type instrumentsFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

// LoadInstruments читает упорядоченную таблицу инструментов; лишние ключи — ошибка.
func LoadInstruments(path string) ([]Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read instruments %s", path)
	}
	return ParseInstruments(raw)
}

func ParseInstruments(raw []byte) ([]Instrument, error) {
	var f instrumentsFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, errors.Wrap(err, "decode instruments")
	}
	if len(f.Instruments) == 0 {
		return nil, errors.New("instruments: empty table")
	}

	seen := make(map[string]struct{}, len(f.Instruments))
	for i := range f.Instruments {
		inst := &f.Instruments[i]
		if inst.Src == "" {
			inst.Src = SourceClose
		}
		if err := inst.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[inst.Symbol]; dup {
			return nil, errors.Errorf("instruments: duplicate symbol %s", inst.Symbol)
		}
		seen[inst.Symbol] = struct{}{}
	}
	return f.Instruments, nil
}

func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return errors.New("instrument: empty symbol")
	}
	switch i.Src {
	case SourceClose, SourceOHLC4:
	default:
		return errors.Errorf("%s: unknown src %q", i.Symbol, i.Src)
	}
	if i.MABaseWindow < 1 {
		return errors.Errorf("%s: ma_base_window must be >= 1", i.Symbol)
	}
	if len(i.Envelopes) == 0 {
		return errors.Errorf("%s: envelopes are empty", i.Symbol)
	}
	prev := 0.0
	for _, e := range i.Envelopes {
		if e <= 0 || e >= 1 {
			return errors.Errorf("%s: envelope %v out of (0,1)", i.Symbol, e)
		}
		if e <= prev {
			return errors.Errorf("%s: envelopes must be strictly ascending", i.Symbol)
		}
		prev = e
	}
	if i.Size <= 0 || i.Size > 1 {
		return errors.Errorf("%s: size %v out of (0,1]", i.Symbol, i.Size)
	}
	if len(i.Sides) == 0 {
		return errors.Errorf("%s: sides are empty", i.Symbol)
	}
	for _, s := range i.Sides {
		if s != "long" && s != "short" {
			return errors.Errorf("%s: unknown side %q", i.Symbol, s)
		}
	}
	return nil
}
