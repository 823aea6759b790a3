package capacity

import "time"

// Prepare drops completed tasks and resolves each remaining task's interval
// and allocation once so aggregators can share the result.
func Prepare(tasks []Task, today time.Time, defaultDays int) []ActiveTask {
	active := make([]ActiveTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		active = append(active, ActiveTask{
			Task:       t,
			Interval:   ResolveInterval(t.StartDate, t.DueDate, today, defaultDays),
			Allocation: AllocateTask(t).Percent,
		})
	}
	return active
}

// DayLoad sums the daily share of every task whose interval covers day.
func DayLoad(tasks []ActiveTask, day time.Time) float64 {
	day = Day(day)
	total := 0.0
	for _, t := range tasks {
		if t.Task.Completed {
			continue
		}
		if t.Interval.Covers(day) {
			total += t.DailyPercent()
		}
	}
	return total
}

// Window evaluates DayLoad for numDays consecutive days beginning at start.
func Window(tasks []ActiveTask, start time.Time, numDays int) []DailyLoad {
	if numDays <= 0 {
		return nil
	}
	loads := make([]DailyLoad, numDays)
	for i := range loads {
		day := AddDays(start, i)
		loads[i] = DailyLoad{Date: day, TotalPercent: DayLoad(tasks, day)}
	}
	return loads
}

// Totals extracts the TotalPercent series from a window.
func Totals(loads []DailyLoad) []float64 {
	values := make([]float64, len(loads))
	for i, l := range loads {
		values[i] = l.TotalPercent
	}
	return values
}

// DailyCapacity is the team's combined per-day capacity in percent.
func DailyCapacity(team []TeamMember) float64 {
	total := 0.0
	for _, m := range team {
		if m.MaxCapacity > 0 {
			total += m.MaxCapacity
		}
	}
	return total / WorkDaysPerWeek
}

// Utilization expresses load as a percentage of capacity; 0 when capacity is 0.
func Utilization(load, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return load / capacity * 100
}
