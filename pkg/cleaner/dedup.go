// pkg/cleaner/dedup.go
package cleaner

import (
	"github.com/cespare/xxhash/v2"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Deduplicate removes rows that equal an earlier row in every column. The first
// occurrence is kept and the relative order of survivors is preserved.
func (c *DataCleaner) Deduplicate(t *model.Table) (*model.Table, []model.CleaningOperation, error) {
	audit := newAuditor(StageDeduplicate, t)
	seen := make(map[uint64][]int, len(t.Rows))

	out := t.Filter(func(i int, row model.Row) bool {
		fp := fingerprint(row)
		for _, j := range seen[fp] {
			if t.Rows[j].Equal(row) {
				audit.rowDropped(i, row, "", model.OpDroppedDuplicate, "duplicate_of_"+audit.rowIdentifier(j, t.Rows[j]))
				return false
			}
		}
		seen[fp] = append(seen[fp], i)
		return true
	})

	return out, audit.ops, nil
}

// fingerprint hashes the canonical keys of every cell of a row
func fingerprint(row model.Row) uint64 {
	d := xxhash.New()
	for _, v := range row {
		_, _ = d.WriteString(v.Key())
		_, _ = d.Write([]byte{0x1f})
	}
	return d.Sum64()
}
