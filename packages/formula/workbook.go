package formula

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/cases"
)

// default worksheet size when none is given
const (
	DefaultRowCount    uint32 = 1000
	DefaultColumnCount uint32 = 26
)

const (
	ChunkRows uint32 = 256                   // rows per chunk - power of 2 for efficient modulo
	ChunkCols uint32 = 256                   // columns per chunk - matches typical viewport size
	ChunkSize        = ChunkRows * ChunkCols // 65536 cells per chunk
)

// Workbook is an in-memory CellDataProvider: a set of named worksheets
// with stable ids. reads may run concurrently; writes must not overlap
// with reads or evaluations.
type Workbook struct {
	worksheets map[uint32]*Worksheet
	nameToID   map[string]uint32 // folded name -> ID
	strings    *textTable
	nextID     uint32
}

// NewWorkbook creates an empty workbook
func NewWorkbook() *Workbook {
	return &Workbook{
		worksheets: make(map[uint32]*Worksheet),
		nameToID:   make(map[string]uint32),
		strings:    newTextTable(),
		nextID:     1, // start at 1, reserve 0 for no worksheet
	}
}

func worksheetKey(name string) string {
	return cases.Fold().String(name)
}

// AddWorksheet creates a worksheet with the given dimensions. zero
// dimensions take the defaults. names are matched case-insensitively.
func (wb *Workbook) AddWorksheet(name string, rows, cols uint32) (*Worksheet, error) {
	if name == "" {
		return nil, NewApplicationError(InvalidArgument, "worksheet name must not be empty")
	}
	key := worksheetKey(name)
	if _, exists := wb.nameToID[key]; exists {
		return nil, NewApplicationError(AlreadyExists, fmt.Sprintf("worksheet %q already exists", name))
	}
	if rows == 0 {
		rows = DefaultRowCount
	}
	if cols == 0 {
		cols = DefaultColumnCount
	}
	if rows > MaxRows || cols > MaxColumns {
		return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("worksheet %q is larger than %dx%d", name, MaxRows, MaxColumns))
	}

	ws := &Worksheet{
		id:      wb.nextID,
		name:    name,
		rows:    rows,
		cols:    cols,
		chunks:  make(map[ChunkKey]*Chunk),
		strings: wb.strings,
	}
	wb.worksheets[ws.id] = ws
	wb.nameToID[key] = ws.id
	wb.nextID++
	return ws, nil
}

// Worksheet returns the worksheet for a given name
func (wb *Workbook) Worksheet(name string) (*Worksheet, bool) {
	id, exists := wb.nameToID[worksheetKey(name)]
	if !exists {
		return nil, false
	}
	return wb.WorksheetByID(id)
}

// WorksheetByID returns the worksheet for a given ID
func (wb *Workbook) WorksheetByID(id uint32) (*Worksheet, bool) {
	ws, exists := wb.worksheets[id]
	return ws, exists
}

// Worksheets returns all worksheets in creation order
func (wb *Workbook) Worksheets() []*Worksheet {
	result := make([]*Worksheet, 0, len(wb.worksheets))
	for _, ws := range wb.worksheets {
		result = append(result, ws)
	}
	slices.SortFunc(result, func(a, b *Worksheet) int {
		return cmp.Compare(a.id, b.id)
	})
	return result
}

// ResolveWorksheet maps a worksheet name to its ID. it has the signature
// ParserContext.ResolveWorksheet expects.
func (wb *Workbook) ResolveWorksheet(name string) (uint32, bool) {
	id, exists := wb.nameToID[worksheetKey(name)]
	return id, exists
}

// ParserContext returns a context for formulas entered on the given
// worksheet
func (wb *Workbook) ParserContext(worksheetID uint32) *ParserContext {
	return &ParserContext{
		CurrentWorksheetID: worksheetID,
		ResolveWorksheet:   wb.ResolveWorksheet,
	}
}

// SetValue stores v at the zero-based position
func (wb *Workbook) SetValue(worksheetID, row, col uint32, v Value) error {
	ws, exists := wb.worksheets[worksheetID]
	if !exists {
		return NewApplicationError(NotFound, fmt.Sprintf("worksheet %d does not exist", worksheetID))
	}
	return ws.Set(row, col, v)
}

// Get implements CellDataProvider
func (wb *Workbook) Get(worksheetID uint32, row, col uint32) Value {
	ws, exists := wb.worksheets[worksheetID]
	if !exists {
		return NewSpreadsheetError(ErrorCodeRef)
	}
	return ws.Get(row, col)
}

// Dimensions implements CellDataProvider
func (wb *Workbook) Dimensions(worksheetID uint32) (rows, cols uint32) {
	ws, exists := wb.worksheets[worksheetID]
	if !exists {
		return 0, 0
	}
	return ws.rows, ws.cols
}

// Calculate parses formula as if entered on the given worksheet and
// evaluates it against the workbook with the built-in functions
func (wb *Workbook) Calculate(formula string, worksheetID uint32) (Value, error) {
	node, err := Parse(formula, wb.ParserContext(worksheetID))
	if err != nil {
		return nil, err
	}
	return Evaluate(node, wb), nil
}

// ChunkKey represents the key for indexing chunks in Worksheet
type ChunkKey struct {
	ChunkRow uint32
	ChunkCol uint32
}

// Worksheet is sparse cell storage with fixed dimensions.
//
// cells are partitioned into 256x256 chunks and each chunk allocates its
// payload arrays lazily, based on the kinds of values actually present.
// text is interned in a table shared by the whole workbook.
type Worksheet struct {
	id         uint32
	name       string
	rows       uint32
	cols       uint32
	chunks     map[ChunkKey]*Chunk
	strings    *textTable
	totalCells int
}

// Chunk is a 256x256 region of cells in structure-of-arrays layout. only
// Kinds exists initially.
type Chunk struct {
	Kinds         []uint8 // ValueKind for each position; KindNull is empty
	NonEmptyCount int

	Numbers   []float64         // Number payloads, booleans as 0/1, error codes (lazy)
	StringIDs []uint32          // interned Text (lazy)
	Arrays    map[uint32]*Array // array values, rare enough for a map (lazy)
}

func (ws *Worksheet) ID() uint32   { return ws.id }
func (ws *Worksheet) Name() string { return ws.name }

// Dimensions returns the declared row and column count
func (ws *Worksheet) Dimensions() (rows, cols uint32) {
	return ws.rows, ws.cols
}

// TotalCells returns the number of non-empty cells
func (ws *Worksheet) TotalCells() int {
	return ws.totalCells
}

func chunkIndex(row, col uint32) (ChunkKey, uint32) {
	key := ChunkKey{ChunkRow: row / ChunkRows, ChunkCol: col / ChunkCols}
	// column-first indexing for better cache locality
	return key, (col%ChunkCols)*ChunkRows + row%ChunkRows
}

// Get returns the value at the zero-based position: Null for empty cells,
// #REF! outside the worksheet
func (ws *Worksheet) Get(row, col uint32) Value {
	if row >= ws.rows || col >= ws.cols {
		return NewSpreadsheetError(ErrorCodeRef)
	}

	key, idx := chunkIndex(row, col)
	chunk, exists := ws.chunks[key]
	if !exists {
		return Null{}
	}

	switch ValueKind(chunk.Kinds[idx]) {
	case KindNumber:
		return Number(chunk.Numbers[idx])
	case KindBoolean:
		return Boolean(chunk.Numbers[idx] != 0)
	case KindError:
		return NewSpreadsheetError(ErrorCode(chunk.Numbers[idx]))
	case KindText:
		s, _ := ws.strings.get(chunk.StringIDs[idx])
		return Text(s)
	case KindArray:
		return chunk.Arrays[idx]
	default:
		return Null{}
	}
}

// Set stores v at the zero-based position. Null clears the cell.
// references cannot be stored.
func (ws *Worksheet) Set(row, col uint32, v Value) error {
	if row >= ws.rows || col >= ws.cols {
		return NewApplicationError(InvalidArgument,
			fmt.Sprintf("%s%d is outside worksheet %q (%dx%d)", ColumnName(col), row+1, ws.name, ws.rows, ws.cols))
	}
	if v == nil {
		v = Null{}
	}
	if IsReference(v) {
		return NewApplicationError(InvalidArgument, "references cannot be stored in cells")
	}

	key, idx := chunkIndex(row, col)
	chunk, exists := ws.chunks[key]
	if !exists {
		if IsNull(v) {
			return nil
		}
		chunk = &Chunk{Kinds: make([]uint8, ChunkSize)}
		ws.chunks[key] = chunk
	}

	wasEmpty := ValueKind(chunk.Kinds[idx]) == KindNull
	ws.clear(chunk, idx)

	switch v := v.(type) {
	case Null:
		if !wasEmpty {
			chunk.NonEmptyCount--
			ws.totalCells--
		}
		if chunk.NonEmptyCount == 0 {
			delete(ws.chunks, key)
		}
		return nil
	case Number:
		chunk.numbers()[idx] = float64(v)
	case Boolean:
		if v {
			chunk.numbers()[idx] = 1
		} else {
			chunk.numbers()[idx] = 0
		}
	case SpreadsheetError:
		chunk.numbers()[idx] = float64(v.Code)
	case Text:
		if chunk.StringIDs == nil {
			chunk.StringIDs = make([]uint32, ChunkSize)
		}
		chunk.StringIDs[idx] = ws.strings.intern(string(v))
	case *Array:
		if chunk.Arrays == nil {
			chunk.Arrays = make(map[uint32]*Array)
		}
		chunk.Arrays[idx] = v
	}

	chunk.Kinds[idx] = uint8(v.Kind())
	if wasEmpty {
		chunk.NonEmptyCount++
		ws.totalCells++
	}
	return nil
}

// clear releases whatever the cell at idx holds, leaving it empty
func (ws *Worksheet) clear(chunk *Chunk, idx uint32) {
	switch ValueKind(chunk.Kinds[idx]) {
	case KindText:
		ws.strings.release(chunk.StringIDs[idx])
		chunk.StringIDs[idx] = 0
	case KindArray:
		delete(chunk.Arrays, idx)
	}
	chunk.Kinds[idx] = uint8(KindNull)
}

func (c *Chunk) numbers() []float64 {
	if c.Numbers == nil {
		c.Numbers = make([]float64, ChunkSize)
	}
	return c.Numbers
}

// textTable interns cell text with reference counting
type textTable struct {
	ids       map[string]uint32
	texts     map[uint32]string
	refCounts map[uint32]int
	nextID    uint32
}

func newTextTable() *textTable {
	return &textTable{
		ids:       make(map[string]uint32),
		texts:     make(map[uint32]string),
		refCounts: make(map[uint32]int),
		nextID:    1, // start at 1, reserve 0 for nil/empty
	}
}

func (t *textTable) intern(s string) uint32 {
	if id, exists := t.ids[s]; exists {
		t.refCounts[id]++
		return id
	}
	id := t.nextID
	t.ids[s] = id
	t.texts[id] = s
	t.refCounts[id] = 1
	t.nextID++
	return id
}

func (t *textTable) get(id uint32) (string, bool) {
	s, exists := t.texts[id]
	return s, exists
}

// release drops one reference and forgets the text once none are left
func (t *textTable) release(id uint32) {
	s, exists := t.texts[id]
	if !exists {
		return
	}
	t.refCounts[id]--
	if t.refCounts[id] <= 0 {
		delete(t.ids, s)
		delete(t.texts, id)
		delete(t.refCounts, id)
	}
}

func (t *textTable) count() int {
	return len(t.ids)
}
