package entity

import (
	"database/sql/driver"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// IDList is a set of uuids stored as a postgres TEXT[] column.
type IDList []uuid.UUID

func (l IDList) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(l))
	for i, id := range l {
		arr[i] = id.String()
	}
	return arr.Value()
}

func (l *IDList) Scan(value any) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	out := make(IDList, 0, len(arr))
	for _, raw := range arr {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

func (l IDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Sorted returns a copy ordered by string form.
func (l IDList) Sorted() IDList {
	out := make(IDList, len(l))
	copy(out, l)
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func (l IDList) Strings() []string {
	out := make([]string, len(l))
	for i, id := range l {
		out[i] = id.String()
	}
	return out
}
