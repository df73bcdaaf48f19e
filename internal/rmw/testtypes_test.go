package rmw

import (
	"github.com/esteve/rmw-libp2p/internal/wire"
)

// int32Type is the smallest useful message type: one int32 field.
type int32Type struct {
	name string
}

func (t int32Type) TypeName() string {
	return t.name
}

func (t int32Type) Encode(msg any, w *wire.Writer) error {
	v, ok := msg.(int32)
	if !ok {
		return ErrTypeMismatch
	}
	w.WriteInt32(v)
	return nil
}

func (t int32Type) Decode(r *wire.Reader) (any, error) {
	v, err := r.ReadInt32()
	return v, err
}

// sensorReading exercises multi-field, order-dependent encoding.
type sensorReading struct {
	Label  string
	Value  float64
	Stale  bool
	Sample int64
}

type sensorReadingType struct{}

func (sensorReadingType) TypeName() string {
	return "test_msgs/SensorReading"
}

func (sensorReadingType) Encode(msg any, w *wire.Writer) error {
	v, ok := msg.(sensorReading)
	if !ok {
		return ErrTypeMismatch
	}
	w.WriteString(v.Label)
	w.WriteFloat64(v.Value)
	w.WriteBool(v.Stale)
	w.WriteInt64(v.Sample)
	return nil
}

func (sensorReadingType) Decode(r *wire.Reader) (any, error) {
	var v sensorReading
	var err error
	if v.Label, err = r.ReadString(); err != nil {
		return nil, err
	}
	if v.Value, err = r.ReadFloat64(); err != nil {
		return nil, err
	}
	if v.Stale, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if v.Sample, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	return v, nil
}
