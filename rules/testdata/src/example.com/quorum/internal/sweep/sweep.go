package sweep

import "time"

func record(op string, seconds float64) {}

func run(start time.Time) (string, bool) {
	defer record("sweep", time.Since(start).Seconds()) // want `time\.Since\(start\) is evaluated at defer time`
	defer func() { record("sweep", time.Since(start).Seconds()) }()

	due := time.Now().After(start)
	return start.Format("2006-01-02"), due // want `use time\.DateOnly`
}

func stamp(t time.Time) string {
	return t.Format(time.DateTime)
}
