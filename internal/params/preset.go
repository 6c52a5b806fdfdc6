package params

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

// Section is the preset file section holding the parameters.
const Section = "plate"

// Read parses an INI preset. Missing keys keep their defaults, present keys
// are clamped to range.
func Read(data []byte) (Values, error) {
	file, err := ini.Load(data)
	if err != nil {
		return Values{}, fmt.Errorf("params: parse preset: %w", err)
	}
	return fromFile(file), nil
}

// LoadFile reads a preset from path.
func LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, err
	}
	return Read(data)
}

func fromFile(file *ini.File) Values {
	sec := file.Section(Section)
	v := Default()
	for i, s := range layout {
		v[i] = s.Clamp(sec.Key(s.Key).MustFloat64(s.Default))
	}
	return v
}

// Write serialises v as an INI preset.
func Write(w io.Writer, v Values) error {
	file := ini.Empty()
	sec, err := file.NewSection(Section)
	if err != nil {
		return err
	}
	for i, s := range layout {
		key, err := sec.NewKey(s.Key, strconv.FormatFloat(v[i], 'g', -1, 64))
		if err != nil {
			return err
		}
		key.Comment = s.Name
		if s.Unit != "" {
			key.Comment += " (" + s.Unit + ")"
		}
	}
	_, err = file.WriteTo(w)
	return err
}

// SaveFile writes v to path.
func SaveFile(path string, v Values) error {
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
