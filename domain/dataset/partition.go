package dataset

import (
	"fmt"
	"sort"
	"time"
)

// PartitionKey groups rows by calendar year and month
type PartitionKey struct {
	Year  int
	Month time.Month
}

// KeyOf derives the partition key of a date
func KeyOf(t time.Time) PartitionKey {
	return PartitionKey{Year: t.Year(), Month: t.Month()}
}

// String renders the key as "2021-03"
func (k PartitionKey) String() string {
	return fmt.Sprintf("%d-%02d", k.Year, int(k.Month))
}

// Suffix renders the key as "2021_03" for file names
func (k PartitionKey) Suffix() string {
	return fmt.Sprintf("%d_%02d", k.Year, int(k.Month))
}

// Less orders keys ascending by (year, month)
func (k PartitionKey) Less(o PartitionKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// Partition is one month of rows. Indices point into the source frame.
type Partition struct {
	Key     PartitionKey
	Indices []int
	Frame   *Frame
}

// PartitionByMonth splits f into one partition per (year, month) of dates,
// which must align with f's rows. Partitions come back in ascending key order
// and rows keep their original relative order.
func PartitionByMonth(f *Frame, dates []time.Time) ([]Partition, error) {
	if len(dates) != f.Len() {
		return nil, fmt.Errorf("partition: %d dates for %d rows", len(dates), f.Len())
	}

	groups := make(map[PartitionKey][]int)
	for i, d := range dates {
		key := KeyOf(d)
		groups[key] = append(groups[key], i)
	}

	keys := make([]PartitionKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	partitions := make([]Partition, len(keys))
	for i, k := range keys {
		partitions[i] = Partition{
			Key:     k,
			Indices: groups[k],
			Frame:   f.Select(groups[k]),
		}
	}
	return partitions, nil
}
