package billiards

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	ErrCapacityExceeded = errors.New("table capacity exceeded")
	ErrInvalidBall      = errors.New("invalid ball")
)

// Table is a fixed-capacity set of slots plus the simulation time, in
// seconds since the owning shot began. A slot index is the stable identity of
// an object within one Table value.
//
// Table is a value type: assigning or passing it copies every slot, and the
// objects themselves are values, so two Tables never share mutable state.
// Append is the only mutating method and is meant for building a table; the
// With* methods return modified copies.
type Table struct {
	Time  float64
	slots [MaxObjects]Object
}

// Append places o in the first empty slot.
func (t *Table) Append(o Object) error {
	if o == nil {
		return nil
	}
	if b, ok := o.(Ball); ok {
		if err := t.checkBall(b, -1); err != nil {
			return err
		}
	}
	for i := range t.slots {
		if t.slots[i] == nil {
			t.slots[i] = o
			return nil
		}
	}
	return fmt.Errorf("%w: %d objects", ErrCapacityExceeded, MaxObjects)
}

func (t *Table) checkBall(b Ball, skip int) error {
	n := b.BallNumber()
	if n < 0 || n >= NumBalls {
		return fmt.Errorf("%w: number %d out of range", ErrInvalidBall, n)
	}
	if !b.Position().IsFinite() {
		return fmt.Errorf("%w: ball %d has a non-finite position", ErrInvalidBall, n)
	}
	if rb, ok := b.(RollingBall); ok && !rb.Vel.IsFinite() {
		return fmt.Errorf("%w: ball %d has a non-finite velocity", ErrInvalidBall, n)
	}
	if i, _, found := t.FindBall(n); found && i != skip {
		return fmt.Errorf("%w: duplicate ball number %d", ErrInvalidBall, n)
	}
	return nil
}

// Get returns the object in slot i, or nil for an empty or out-of-range slot.
func (t Table) Get(i int) Object {
	if i < 0 || i >= MaxObjects {
		return nil
	}
	return t.slots[i]
}

// All yields every occupied slot in slot order. Each call starts a fresh
// traversal from slot 0 over a private copy of the slots.
func (t Table) All() iter.Seq2[int, Object] {
	slots := t.slots
	return func(yield func(int, Object) bool) {
		for i, o := range slots {
			if o == nil {
				continue
			}
			if !yield(i, o) {
				return
			}
		}
	}
}

// Balls yields every still or rolling ball in slot order.
func (t Table) Balls() iter.Seq2[int, Ball] {
	slots := t.slots
	return func(yield func(int, Ball) bool) {
		for i, o := range slots {
			b, ok := o.(Ball)
			if !ok {
				continue
			}
			if !yield(i, b) {
				return
			}
		}
	}
}

// Len is the number of occupied slots.
func (t Table) Len() int {
	n := 0
	for _, o := range t.slots {
		if o != nil {
			n++
		}
	}
	return n
}

// FindBall locates the ball with the given number.
func (t Table) FindBall(number int) (int, Ball, bool) {
	for i, b := range t.Balls() {
		if b.BallNumber() == number {
			return i, b, true
		}
	}
	return -1, nil, false
}

// Rolling counts the rolling balls on the table.
func (t Table) Rolling() int {
	n := 0
	for _, o := range t.slots {
		if _, ok := o.(RollingBall); ok {
			n++
		}
	}
	return n
}

// With returns a copy of t with slot i replaced by o. A nil o empties the slot.
// It panics if i is out of range.
func (t Table) With(i int, o Object) Table {
	t.slots[i] = o
	return t
}

// WithTime returns a copy of t with its time set.
func (t Table) WithTime(time float64) Table {
	t.Time = time
	return t
}

// Geometry returns a copy of t holding only holes and cushions, at time 0.
func (t Table) Geometry() Table {
	var g Table
	for i, o := range t.slots {
		if _, ok := o.(Ball); !ok {
			g.slots[i] = o
		}
	}
	return g
}

func (t Table) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "time = %6.1f;\n", t.Time)
	for i, o := range t.slots {
		if o == nil {
			fmt.Fprintf(&sb, "  [%02d] = NULL;\n", i)
			continue
		}
		fmt.Fprintf(&sb, "  [%02d] = %s\n", i, o)
	}
	return sb.String()
}

type objectJSON struct {
	Slot   int         `json:"slot"`
	Type   string      `json:"type"`
	Number *int        `json:"number,omitempty"`
	Pos    *Coordinate `json:"pos,omitempty"`
	Vel    *Coordinate `json:"vel,omitempty"`
	Acc    *Coordinate `json:"acc,omitempty"`
	X      *float64    `json:"x,omitempty"`
	Y      *float64    `json:"y,omitempty"`
}

type tableJSON struct {
	Time    float64      `json:"time"`
	Objects []objectJSON `json:"objects"`
}

// MarshalJSON encodes the occupied slots. Rolling balls carry their derived
// acceleration for display; it is ignored when decoding.
func (t Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Time: t.Time, Objects: make([]objectJSON, 0, MaxObjects)}
	for i, o := range t.All() {
		oj := objectJSON{Slot: i, Type: o.Kind().String()}
		switch v := o.(type) {
		case StillBall:
			oj.Number, oj.Pos = &v.Number, &v.Pos
		case RollingBall:
			acc := v.Acc()
			oj.Number, oj.Pos, oj.Vel, oj.Acc = &v.Number, &v.Pos, &v.Vel, &acc
		case Hole:
			oj.Pos = &v.Pos
		case HCushion:
			oj.Y = &v.Y
		case VCushion:
			oj.X = &v.X
		}
		out.Objects = append(out.Objects, oj)
	}
	return json.Marshal(out)
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out Table
	out.Time = in.Time
	for _, oj := range in.Objects {
		if oj.Slot < 0 || oj.Slot >= MaxObjects {
			return fmt.Errorf("%w: slot %d", ErrCapacityExceeded, oj.Slot)
		}
		o, err := oj.decode()
		if err != nil {
			return err
		}
		if b, ok := o.(Ball); ok {
			if err := out.checkBall(b, oj.Slot); err != nil {
				return err
			}
		}
		out.slots[oj.Slot] = o
	}
	*t = out
	return nil
}

func (oj objectJSON) decode() (Object, error) {
	kind, ok := parseKind(oj.Type)
	if !ok {
		return nil, fmt.Errorf("unknown object type %q", oj.Type)
	}
	missing := func(field string) error {
		return fmt.Errorf("%s in slot %d is missing %s", oj.Type, oj.Slot, field)
	}
	switch kind {
	case KindStillBall, KindRollingBall:
		if oj.Number == nil || oj.Pos == nil {
			return nil, missing("number or pos")
		}
		if kind == KindStillBall {
			return StillBall{Number: *oj.Number, Pos: *oj.Pos}, nil
		}
		if oj.Vel == nil {
			return nil, missing("vel")
		}
		return RollingBall{Number: *oj.Number, Pos: *oj.Pos, Vel: *oj.Vel}, nil
	case KindHole:
		if oj.Pos == nil {
			return nil, missing("pos")
		}
		return Hole{Pos: *oj.Pos}, nil
	case KindHCushion:
		if oj.Y == nil {
			return nil, missing("y")
		}
		return HCushion{Y: *oj.Y}, nil
	default:
		if oj.X == nil {
			return nil, missing("x")
		}
		return VCushion{X: *oj.X}, nil
	}
}
