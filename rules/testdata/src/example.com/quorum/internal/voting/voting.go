package voting

import "time"

type Clock interface{ Now() time.Time }

func open(c Clock, beginsAt, endsAt time.Time) bool {
	if endsAt.Before(time.Now()) { // want `compare against the injected Clock`
		return false
	}
	if time.Now().Before(beginsAt) { // want `compare against the injected Clock`
		return false
	}
	return endsAt.After(c.Now())
}
