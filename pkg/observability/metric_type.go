package observability

import "sort"

type Label struct {
	Key   string
	Value string
}

type MetricOpt struct {
	Help        string
	Buckets     []float64
	ConstLabels []Label
	LabelKeys   []string
	Unit        string
}

// LabelsFromMap returns the entries of m as labels ordered by key.
func LabelsFromMap(m map[string]string) []Label {
	labels := make([]Label, 0, len(m))
	for k, v := range m {
		labels = append(labels, Label{Key: k, Value: v})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Key < labels[j].Key })
	return labels
}
