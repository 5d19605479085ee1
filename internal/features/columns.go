package features

// Columns is the ordered set of KOI measurement columns the classifier was fit on.
// The order is part of the model contract and must not change.
var Columns = []string{
	"koi_period", "koi_period_err1", "koi_period_err2",
	"koi_duration", "koi_duration_err1", "koi_duration_err2",
	"koi_depth", "koi_depth_err1", "koi_depth_err2",
	"koi_prad", "koi_prad_err1", "koi_prad_err2",
	"koi_teq", "koi_teq_err1", "koi_teq_err2",
	"koi_insol", "koi_insol_err1", "koi_insol_err2",
	"koi_model_snr", "koi_steff", "koi_steff_err1", "koi_steff_err2",
	"koi_slogg", "koi_slogg_err1", "koi_slogg_err2",
	"koi_srad", "koi_srad_err1", "koi_srad_err2",
	"koi_kepmag",
}

// Count is the width of every aligned table.
var Count = len(Columns)

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c] = i
	}
	return m
}()

// Index returns the position of a column in Columns.
func Index(name string) (int, bool) {
	i, ok := columnIndex[name]
	return i, ok
}

// SameColumns reports whether names matches Columns exactly, including order.
func SameColumns(names []string) bool {
	if len(names) != len(Columns) {
		return false
	}
	for i := range names {
		if names[i] != Columns[i] {
			return false
		}
	}
	return true
}
