package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carte-app/api/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Mock transaction plumbing ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	db        *fakeDB
	snapshot  *fakeState
	done      bool
	commitErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }

func (m *mockTx) Commit(ctx context.Context) error {
	if m.done {
		return pgx.ErrTxClosed
	}
	if m.commitErr != nil {
		return m.commitErr
	}
	m.done = true
	m.db.txMu.Unlock()
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.done {
		return pgx.ErrTxClosed
	}
	m.done = true
	m.db.mu.Lock()
	m.db.state = m.snapshot
	m.db.mu.Unlock()
	m.db.rollbacks++
	m.db.txMu.Unlock()
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockPool implements Pool. Transactions are serialized and a rollback
// restores the state captured at Begin.
type mockPool struct {
	db       *fakeDB
	beginErr error
}

func (p *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	p.db.txMu.Lock()
	p.db.mu.Lock()
	snap := p.db.state.clone()
	p.db.mu.Unlock()
	return &mockTx{db: p.db, snapshot: snap}, nil
}

func (p *mockPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (p *mockPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("not implemented")
}
func (p *mockPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("not implemented")
}

// --- In-memory store ---

type fakeState struct {
	nextID     int64
	menus      map[int64]database.Menu
	categories map[int64]database.Category
	items      map[int64]database.MenuItem
	orders     map[int64]database.Order
	lines      []database.OrderLine
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		nextID:     s.nextID,
		menus:      make(map[int64]database.Menu, len(s.menus)),
		categories: make(map[int64]database.Category, len(s.categories)),
		items:      make(map[int64]database.MenuItem, len(s.items)),
		orders:     make(map[int64]database.Order, len(s.orders)),
		lines:      append([]database.OrderLine(nil), s.lines...),
	}
	for k, v := range s.menus {
		c.menus[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// fakeDB implements OrderStore and CatalogStore in memory. Every method
// is atomic, which mirrors single-statement conditional updates.
type fakeDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	state     *fakeState
	rollbacks int

	// Hooks for failure injection.
	createOrderErrs   []error
	createLineErr     error
	beforeStatusWrite func(db *fakeDB)
}

func newFakeDB() *fakeDB {
	return &fakeDB{state: &fakeState{
		menus:      map[int64]database.Menu{},
		categories: map[int64]database.Category{},
		items:      map[int64]database.MenuItem{},
		orders:     map[int64]database.Order{},
	}}
}

func (f *fakeDB) id() int64 {
	f.state.nextID++
	return f.state.nextID
}

func (f *fakeDB) pool() *mockPool { return &mockPool{db: f} }

func (f *fakeDB) orderStore() NewOrderStore {
	return func(db database.DBTX) OrderStore { return f }
}

func (f *fakeDB) catalogStore() NewCatalogStore {
	return func(db database.DBTX) CatalogStore { return f }
}

// seed helpers bypass transactions.

func (f *fakeDB) seedMenu(name, password string) database.Menu {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := database.Menu{ID: f.id(), Name: name, AdminPassword: password, CreatedAt: time.Now()}
	f.state.menus[m.ID] = m
	return m
}

func (f *fakeDB) seedCategory(menuID int64, name string) database.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := database.Category{ID: f.id(), MenuID: menuID, Name: name, CreatedAt: time.Now()}
	f.state.categories[c.ID] = c
	return c
}

func (f *fakeDB) seedItem(categoryID int64, name string, stock int32) database.MenuItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := database.MenuItem{ID: f.id(), CategoryID: categoryID, Name: name, Stock: stock, CreatedAt: time.Now()}
	f.state.items[it.ID] = it
	return it
}

func (f *fakeDB) stock(itemID int64) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.items[itemID].Stock
}

func (f *fakeDB) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.orders)
}

func (f *fakeDB) lineCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.lines)
}

func (f *fakeDB) setStatus(orderID int64, status database.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.state.orders[orderID]
	o.Status = status
	f.state.orders[orderID] = o
}

func (f *fakeDB) menuOfItem(it database.MenuItem) int64 {
	return f.state.categories[it.CategoryID].MenuID
}

func (f *fakeDB) itemReferenced(itemID int64) bool {
	for _, l := range f.state.lines {
		if l.ItemID == itemID {
			return true
		}
	}
	return false
}

// --- StockStore ---

func (f *fakeDB) DecrementStock(ctx context.Context, arg database.DecrementStockParams) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.state.items[arg.ID]
	if !ok || it.Stock < arg.Quantity {
		return 0, pgx.ErrNoRows
	}
	it.Stock -= arg.Quantity
	f.state.items[arg.ID] = it
	return it.Stock, nil
}

func (f *fakeDB) GetMenuItem(ctx context.Context, id int64) (database.GetMenuItemRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.state.items[id]
	if !ok {
		return database.GetMenuItemRow{}, pgx.ErrNoRows
	}
	return database.GetMenuItemRow{
		ID:         it.ID,
		CategoryID: it.CategoryID,
		Name:       it.Name,
		Stock:      it.Stock,
		MenuID:     f.menuOfItem(it),
	}, nil
}

func (f *fakeDB) SetStock(ctx context.Context, arg database.SetStockParams) (database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.state.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	it.Stock = arg.Stock
	f.state.items[arg.ID] = it
	return it, nil
}

// --- Menus ---

func (f *fakeDB) ListMenus(ctx context.Context) ([]database.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.Menu{}
	for _, m := range f.state.menus {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDB) CreateMenu(ctx context.Context, arg database.CreateMenuParams) (database.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := database.Menu{ID: f.id(), Name: arg.Name, AdminPassword: arg.AdminPassword, CreatedAt: time.Now()}
	f.state.menus[m.ID] = m
	return m, nil
}

func (f *fakeDB) GetMenu(ctx context.Context, id int64) (database.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.menus[id]
	if !ok {
		return database.Menu{}, pgx.ErrNoRows
	}
	return m, nil
}

func (f *fakeDB) UpdateMenuName(ctx context.Context, arg database.UpdateMenuNameParams) (database.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.menus[arg.ID]
	if !ok {
		return database.Menu{}, pgx.ErrNoRows
	}
	m.Name = arg.Name
	f.state.menus[m.ID] = m
	return m, nil
}

func (f *fakeDB) DeleteMenu(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.menus[id]; !ok {
		return 0, pgx.ErrNoRows
	}
	delete(f.state.menus, id)
	for cid, c := range f.state.categories {
		if c.MenuID == id {
			delete(f.state.categories, cid)
		}
	}
	for iid, it := range f.state.items {
		if _, ok := f.state.categories[it.CategoryID]; !ok {
			delete(f.state.items, iid)
		}
	}
	kept := f.state.lines[:0]
	for oid, o := range f.state.orders {
		if o.MenuID == id {
			delete(f.state.orders, oid)
		}
	}
	for _, l := range f.state.lines {
		if _, ok := f.state.orders[l.OrderID]; ok {
			kept = append(kept, l)
		}
	}
	f.state.lines = kept
	return id, nil
}

func (f *fakeDB) BumpMenuVersion(ctx context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.menus[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	m.Version++
	f.state.menus[id] = m
	return m.Version, nil
}

// --- Categories ---

func (f *fakeDB) CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := database.Category{ID: f.id(), MenuID: arg.MenuID, Name: arg.Name, CreatedAt: time.Now()}
	f.state.categories[c.ID] = c
	return c, nil
}

func (f *fakeDB) GetCategory(ctx context.Context, arg database.GetCategoryParams) (database.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.state.categories[arg.ID]
	if !ok || c.MenuID != arg.MenuID {
		return database.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeDB) DeleteCategory(ctx context.Context, arg database.DeleteCategoryParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.state.categories[arg.ID]
	if !ok || c.MenuID != arg.MenuID {
		return 0, pgx.ErrNoRows
	}
	for _, it := range f.state.items {
		if it.CategoryID == c.ID && f.itemReferenced(it.ID) {
			return 0, &pgconn.PgError{Code: "23503"}
		}
	}
	for iid, it := range f.state.items {
		if it.CategoryID == c.ID {
			delete(f.state.items, iid)
		}
	}
	delete(f.state.categories, c.ID)
	return c.ID, nil
}

func (f *fakeDB) ListCategoriesByMenu(ctx context.Context, menuID int64) ([]database.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.Category{}
	for _, c := range f.state.categories {
		if c.MenuID == menuID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Items ---

func (f *fakeDB) CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := database.MenuItem{ID: f.id(), CategoryID: arg.CategoryID, Name: arg.Name, Stock: arg.Stock, CreatedAt: time.Now()}
	f.state.items[it.ID] = it
	return it, nil
}

func (f *fakeDB) DeleteMenuItem(ctx context.Context, arg database.DeleteMenuItemParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.state.items[arg.ID]
	if !ok || f.menuOfItem(it) != arg.MenuID {
		return 0, pgx.ErrNoRows
	}
	if f.itemReferenced(it.ID) {
		return 0, &pgconn.PgError{Code: "23503"}
	}
	delete(f.state.items, it.ID)
	return it.ID, nil
}

func (f *fakeDB) ListMenuItemsByMenu(ctx context.Context, menuID int64) ([]database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.MenuItem{}
	for _, it := range f.state.items {
		if f.menuOfItem(it) == menuID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- Orders ---

func (f *fakeDB) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createOrderErrs) > 0 {
		err := f.createOrderErrs[0]
		f.createOrderErrs = f.createOrderErrs[1:]
		return database.Order{}, err
	}
	now := time.Now()
	o := database.Order{
		ID:        f.id(),
		MenuID:    arg.MenuID,
		UserName:  arg.UserName,
		Status:    database.OrderStatusPENDING,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.state.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createLineErr != nil {
		return database.OrderLine{}, f.createLineErr
	}
	l := database.OrderLine{ID: f.id(), OrderID: arg.OrderID, ItemID: arg.ItemID, Quantity: arg.Quantity}
	f.state.lines = append(f.state.lines, l)
	return l, nil
}

func (f *fakeDB) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.state.orders[arg.ID]
	if !ok || o.MenuID != arg.MenuID {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeDB) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if hook := f.beforeStatusWrite; hook != nil {
		f.beforeStatusWrite = nil
		hook(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.state.orders[arg.ID]
	if !ok || o.MenuID != arg.MenuID || o.Status != arg.Status_2 {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = time.Now()
	f.state.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) ArchiveOrder(ctx context.Context, arg database.ArchiveOrderParams) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.state.orders[arg.ID]
	if !ok || o.MenuID != arg.MenuID {
		return database.Order{}, pgx.ErrNoRows
	}
	if o.Status != database.OrderStatusARCHIVED {
		o.Status = database.OrderStatusARCHIVED
		o.UpdatedAt = time.Now()
	}
	f.state.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) ListOrdersByMenu(ctx context.Context, arg database.ListOrdersByMenuParams) ([]database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.Order{}
	for _, o := range f.state.orders {
		if o.MenuID != arg.MenuID {
			continue
		}
		if !arg.IncludeArchived && o.Status == database.OrderStatusARCHIVED {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDB) ListOrderLinesByOrder(ctx context.Context, orderID int64) ([]database.ListOrderLinesByOrderRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.ListOrderLinesByOrderRow{}
	for _, l := range f.state.lines {
		if l.OrderID == orderID {
			out = append(out, database.ListOrderLinesByOrderRow{
				ID: l.ID, OrderID: l.OrderID, ItemID: l.ItemID, Quantity: l.Quantity,
				ItemName: f.state.items[l.ItemID].Name,
			})
		}
	}
	return out, nil
}

func (f *fakeDB) ListOrderLinesByMenu(ctx context.Context, menuID int64) ([]database.ListOrderLinesByMenuRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []database.ListOrderLinesByMenuRow{}
	for _, l := range f.state.lines {
		if f.state.orders[l.OrderID].MenuID == menuID {
			out = append(out, database.ListOrderLinesByMenuRow{
				ID: l.ID, OrderID: l.OrderID, ItemID: l.ItemID, Quantity: l.Quantity,
				ItemName: f.state.items[l.ItemID].Name,
			})
		}
	}
	return out, nil
}
