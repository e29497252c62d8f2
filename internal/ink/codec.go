// Package ink serializes drawings to the opaque blobs kept by the stores.
package ink

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"mushaf/internal/domain"
)

// Codec turns a drawing into bytes and back.
type Codec interface {
	Encode(d domain.Drawing) ([]byte, error)
	Decode(data []byte) (domain.Drawing, error)
}

// ErrInvalidDrawing is returned for drawings that cannot be represented.
var ErrInvalidDrawing = errors.New("invalid drawing")

// JSONCodec stores drawings as compact JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(d domain.Drawing) ([]byte, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	if d.Strokes == nil {
		d.Strokes = []domain.Stroke{}
	}
	return json.Marshal(d)
}

func (JSONCodec) Decode(data []byte) (domain.Drawing, error) {
	var d domain.Drawing
	if len(data) == 0 {
		return d, fmt.Errorf("decode drawing: %w", ErrInvalidDrawing)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Drawing{}, fmt.Errorf("decode drawing: %w", err)
	}
	if err := validate(d); err != nil {
		return domain.Drawing{}, err
	}
	if len(d.Strokes) == 0 {
		d.Strokes = nil
	}
	return d, nil
}

func validate(d domain.Drawing) error {
	for i, s := range d.Strokes {
		if !finite(s.Width) || s.Width < 0 {
			return fmt.Errorf("stroke %d: width %v: %w", i, s.Width, ErrInvalidDrawing)
		}
		for _, p := range s.Points {
			if !finite(p.X) || !finite(p.Y) || !finite(p.Pressure) {
				return fmt.Errorf("stroke %d: non-finite point: %w", i, ErrInvalidDrawing)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Equal reports whether two drawings encode to the same bytes. Two
// drawings that cannot be encoded are compared by their printed form.
func Equal(c Codec, a, b domain.Drawing) bool {
	ea, errA := c.Encode(a)
	eb, errB := c.Encode(b)
	switch {
	case errA != nil && errB != nil:
		return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
	case errA != nil || errB != nil:
		return false
	}
	return string(ea) == string(eb)
}
