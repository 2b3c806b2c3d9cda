// Package status deriva el estado financiero y operativo de un cliente a partir de
// sus periodos de servicio, su convenio activo y los pagos vinculados. Todas las
// funciones son puras: "hoy" siempre se recibe como parámetro.
package status

import "time"

// Day trunca t al día calendario de su propia zona horaria y lo devuelve como
// medianoche UTC. Todas las comparaciones de fechas del paquete usan valores de Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today devuelve el día calendario de now en la zona del negocio.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// DaysBetween días completos de a hasta b (negativo si b es anterior a a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// AddDays suma n días calendario a Day(t).
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// contains indica si today cae en [start, end] con ambos extremos inclusivos.
func contains(start, end, today time.Time) bool {
	return !Day(start).After(today) && !Day(end).Before(today)
}
