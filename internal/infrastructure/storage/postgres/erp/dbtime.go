package erp

import "time"

// dbTime scans a nullable timestamp column into a *time.Time, avoiding a
// sql.NullTime round trip at every call site that reads due_ship.
type dbTime struct {
	valid bool
	t     time.Time
}

func (d *dbTime) Scan(src any) error {
	if src == nil {
		d.valid = false
		return nil
	}
	switch v := src.(type) {
	case time.Time:
		d.t = v
		d.valid = true
	}
	return nil
}

func (d *dbTime) asTimePtr() *time.Time {
	if d == nil || !d.valid {
		return nil
	}
	t := d.t
	return &t
}
