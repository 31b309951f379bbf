package domain

import "time"

// Window is one (check-in, check-out) stay-date pair.
type Window struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Key renders a stable identifier for logs and dedupe keys.
func (w Window) Key() string {
	return w.CheckIn.Format("2006-01-02") + "_" + w.CheckOut.Format("2006-01-02")
}

// Windows produces the ordered one-night stay windows to evaluate: window i
// spans (today+i+1, today+i+2). Pure in today and horizonDays; a horizon of
// zero or less yields nothing.
func Windows(today time.Time, horizonDays int) []Window {
	if horizonDays <= 0 {
		return nil
	}
	day := midnightUTC(today)
	windows := make([]Window, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		checkIn := day.AddDate(0, 0, i+1)
		windows = append(windows, Window{
			CheckIn:  checkIn,
			CheckOut: checkIn.AddDate(0, 0, 1),
		})
	}
	return windows
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
