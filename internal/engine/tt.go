package engine

// 排序表条目：只记哪一步最好，不存分数，所以不会影响搜索结果。
type ttEntry struct {
	Depth int
	Index int // 在 LegalMoves 生成顺序里的下标
}

const ttEntryBytes = 32

// orderTable 每次搜索新建，迭代加深之间共享。
type orderTable struct {
	m   map[uint64]ttEntry
	cap int
}

func newOrderTable(hashMB int) *orderTable {
	if hashMB <= 0 {
		hashMB = DefaultHashMB
	}
	capacity := hashMB * 1024 * 1024 / ttEntryBytes
	return &orderTable{
		m:   make(map[uint64]ttEntry, min(capacity, 1<<16)),
		cap: capacity,
	}
}

func (t *orderTable) probe(key uint64) (int, bool) {
	entry, ok := t.m[key]
	if !ok {
		return -1, false
	}
	return entry.Index, true
}

// store 深度优先替换；满了整表清空
func (t *orderTable) store(key uint64, depth, index int) {
	if index < 0 {
		return
	}
	if len(t.m) >= t.cap {
		t.m = make(map[uint64]ttEntry, min(t.cap, 1<<16))
	}
	old, ok := t.m[key]
	if !ok || depth >= old.Depth {
		t.m[key] = ttEntry{Depth: depth, Index: index}
	}
}
