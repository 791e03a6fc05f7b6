package service

import (
	"context"
	"sync"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

// ── In-memory ShiftRepository ────────────────────────────────────────────────

type fakeShiftRepo struct {
	shifts    map[uuid.UUID]*model.Shift
	movements []model.CashMovement
	// failCreateWith simulates the single-open-shift unique index rejecting
	// an insert that raced past the pre-check. Consumed on first use.
	failCreateWith error
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *fakeShiftRepo) DB() *gorm.DB { return nil }

func (r *fakeShiftRepo) CreateShiftTx(_ *gorm.DB, s *model.Shift) error {
	if r.failCreateWith != nil {
		err := r.failCreateWith
		r.failCreateWith = nil
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) FindOpenByOperatorTx(_ *gorm.DB, operatorID, businessID uuid.UUID) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.OperatorID == operatorID && s.BusinessID == businessID && s.Status == model.ShiftOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShiftRepo) FindShiftByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeShiftRepo) LockShiftTx(_ *gorm.DB, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeShiftRepo) UpdateShiftTx(_ *gorm.DB, s *model.Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *fakeShiftRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeShiftRepo) ListMovementsTx(_ *gorm.DB, shiftID uuid.UUID) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.ShiftID == shiftID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeShiftRepo) ListMovements(_ context.Context, shiftID uuid.UUID) ([]model.CashMovement, error) {
	return r.ListMovementsTx(nil, shiftID)
}

func (r *fakeShiftRepo) ListShifts(_ context.Context, businessID uuid.UUID, page, limit int) ([]model.Shift, int64, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		if s.BusinessID == businessID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
	order []uuid.UUID
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Lines {
		if s.Lines[i].ID == uuid.Nil {
			s.Lines[i].ID = uuid.New()
		}
		s.Lines[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) ListByShiftTx(_ *gorm.DB, shiftID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, id := range r.order {
		if r.sales[id].ShiftID == shiftID {
			out = append(out, *r.sales[id])
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, id := range r.order {
		if filter.ShiftID == "" || r.sales[id].ShiftID.String() == filter.ShiftID {
			out = append(out, *r.sales[id])
		}
	}
	return out, int64(len(out)), nil
}

// ── In-memory CatalogRepository ──────────────────────────────────────────────

type fakeCatalogRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	services map[uuid.UUID]*model.Service
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products: make(map[uuid.UUID]*model.Product),
		services: make(map[uuid.UUID]*model.Service),
	}
}

func (r *fakeCatalogRepo) CreateProduct(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeCatalogRepo) FindProductByID(_ context.Context, id, businessID uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeCatalogRepo) FindProductTx(_ *gorm.DB, id, businessID uuid.UUID) (*model.Product, error) {
	return r.FindProductByID(context.Background(), id, businessID)
}

func (r *fakeCatalogRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.OnHand < qty {
		return false, nil
	}
	p.OnHand -= qty
	return true, nil
}

func (r *fakeCatalogRepo) UpdateProduct(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeCatalogRepo) DeactivateProduct(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakeCatalogRepo) ListProducts(_ context.Context, businessID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.BusinessID == businessID && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) CreateService(_ context.Context, s *model.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.services[s.ID] = s
	return nil
}

func (r *fakeCatalogRepo) FindServiceByID(_ context.Context, id, businessID uuid.UUID) (*model.Service, error) {
	s, ok := r.services[id]
	if !ok || s.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeCatalogRepo) FindServiceTx(_ *gorm.DB, id, businessID uuid.UUID) (*model.Service, error) {
	return r.FindServiceByID(context.Background(), id, businessID)
}

func (r *fakeCatalogRepo) UpdateService(_ context.Context, s *model.Service) error {
	r.services[s.ID] = s
	return nil
}

func (r *fakeCatalogRepo) DeactivateService(_ context.Context, id uuid.UUID) error {
	if s, ok := r.services[id]; ok {
		s.Active = false
	}
	return nil
}

func (r *fakeCatalogRepo) ListServices(_ context.Context, businessID uuid.UUID) ([]model.Service, error) {
	var out []model.Service
	for _, s := range r.services {
		if s.BusinessID == businessID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ── In-memory BusinessRepository ─────────────────────────────────────────────

type fakeBusinessRepo struct {
	businesses map[uuid.UUID]*model.Business
	employees  map[uuid.UUID]*model.Employee
	customers  map[uuid.UUID]*model.Customer
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{
		businesses: make(map[uuid.UUID]*model.Business),
		employees:  make(map[uuid.UUID]*model.Employee),
		customers:  make(map[uuid.UUID]*model.Customer),
	}
}

func (r *fakeBusinessRepo) CreateBusiness(_ context.Context, b *model.Business) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.businesses[b.ID] = b
	return nil
}

func (r *fakeBusinessRepo) FindBusinessByID(_ context.Context, id uuid.UUID) (*model.Business, error) {
	return r.FindBusinessTx(nil, id)
}

func (r *fakeBusinessRepo) FindBusinessTx(_ *gorm.DB, id uuid.UUID) (*model.Business, error) {
	b, ok := r.businesses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *fakeBusinessRepo) UpdateBusiness(_ context.Context, b *model.Business) error {
	r.businesses[b.ID] = b
	return nil
}

func (r *fakeBusinessRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Business, error) {
	var out []model.Business
	for _, b := range r.businesses {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBusinessRepo) CreateEmployee(_ context.Context, e *model.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.employees[e.ID] = e
	return nil
}

func (r *fakeBusinessRepo) FindEmployee(_ context.Context, userID, businessID uuid.UUID) (*model.Employee, error) {
	return r.FindEmployeeTx(nil, userID, businessID)
}

func (r *fakeBusinessRepo) FindEmployeeTx(_ *gorm.DB, userID, businessID uuid.UUID) (*model.Employee, error) {
	for _, e := range r.employees {
		if e.UserID == userID && e.BusinessID == businessID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBusinessRepo) FindEmployeeByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	return r.FindEmployeeByIDTx(nil, id)
}

func (r *fakeBusinessRepo) FindEmployeeByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeBusinessRepo) ListEmployees(_ context.Context, businessID uuid.UUID) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range r.employees {
		if e.BusinessID == businessID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeBusinessRepo) CreateCustomer(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *fakeBusinessRepo) FindCustomerByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

// ── Reference data fake ──────────────────────────────────────────────────────

type fakeRefDataRepo struct {
	rd      *repository.RefData
	methods map[uuid.UUID]*model.PaymentMethod
}

func (r *fakeRefDataRepo) LoadTx(_ *gorm.DB) (*repository.RefData, error) { return r.rd, nil }

func (r *fakeRefDataRepo) FindPaymentMethod(_ *gorm.DB, id uuid.UUID) (*model.PaymentMethod, error) {
	pm, ok := r.methods[id]
	if !ok || !pm.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return pm, nil
}

// ── Counter fake ─────────────────────────────────────────────────────────────

type fakeCounterRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: make(map[string]int64)}
}

func (r *fakeCounterRepo) NextSequenceTx(_ *gorm.DB, establishmentCode, emissionPointCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	key := establishmentCode + "-" + emissionPointCode
	r.counters[key]++
	return r.counters[key], nil
}

// ── User fake ────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

// ── Sale pipeline collaborators ──────────────────────────────────────────────

type fakeFiler struct {
	err   error
	calls int
}

func (f *fakeFiler) FileInvoice(_ context.Context, _ *model.Sale, _ *model.Business) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "AUTH-0001", nil
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderReceipt(_ *model.Sale, _ *model.Business) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

type fakeMailer struct {
	sentTo []string
}

func (f *fakeMailer) EnqueueReceipt(_ context.Context, to string, _ *model.Sale, _ []byte) error {
	f.sentTo = append(f.sentTo, to)
	return nil
}

// ── Test environment ─────────────────────────────────────────────────────────

// env wires the full service graph over in-memory fakes with one active
// business, one operator and the seeded reference catalogs.
type env struct {
	shiftRepo    *fakeShiftRepo
	saleRepo     *fakeSaleRepo
	catalogRepo  *fakeCatalogRepo
	businessRepo *fakeBusinessRepo
	refDataRepo  *fakeRefDataRepo
	counterRepo  *fakeCounterRepo

	kinds      map[string]model.MovementKind
	cashMethod model.PaymentMethod
	business   *model.Business
	operatorID uuid.UUID // user id
	employee   *model.Employee

	filer    *fakeFiler
	renderer *fakeRenderer
	mailer   *fakeMailer

	ledger     LedgerService
	reconciler ReconcileEngine
	shifts     ShiftService
	sequences  SequenceService
	sales      SaleService
}

func newEnv() *env {
	e := &env{
		shiftRepo:    newFakeShiftRepo(),
		saleRepo:     newFakeSaleRepo(),
		catalogRepo:  newFakeCatalogRepo(),
		businessRepo: newFakeBusinessRepo(),
		counterRepo:  newFakeCounterRepo(),
		filer:        &fakeFiler{},
		renderer:     &fakeRenderer{},
		mailer:       &fakeMailer{},
	}

	e.kinds = make(map[string]model.MovementKind)
	var kinds []model.MovementKind
	for code, dir := range map[string]string{
		model.KindOpening:   model.DirectionIngress,
		model.KindSale:      model.DirectionIngress,
		model.KindClosing:   model.DirectionEgress,
		model.KindManualIn:  model.DirectionIngress,
		model.KindManualOut: model.DirectionEgress,
	} {
		k := model.MovementKind{ID: uuid.New(), Code: code, Name: code, Direction: dir, Active: true}
		e.kinds[code] = k
		kinds = append(kinds, k)
	}

	e.cashMethod = model.PaymentMethod{ID: uuid.New(), Name: "Cash", Active: true}
	e.refDataRepo = &fakeRefDataRepo{
		rd:      repository.NewRefData(kinds, dec("12"), e.cashMethod),
		methods: map[uuid.UUID]*model.PaymentMethod{e.cashMethod.ID: &e.cashMethod},
	}

	e.business = &model.Business{
		ID:                uuid.New(),
		Name:              "Corner Barbershop",
		OwnerID:           uuid.New(),
		EstablishmentCode: strptr("001"),
		Active:            true,
	}
	e.businessRepo.businesses[e.business.ID] = e.business

	e.operatorID = uuid.New()
	e.employee = &model.Employee{
		ID:                   uuid.New(),
		UserID:               e.operatorID,
		BusinessID:           e.business.ID,
		Role:                 model.RoleOperator,
		DefaultCommissionPct: decimal.Zero,
		EmissionPointCode:    strptr("001"),
		Active:               true,
	}
	e.businessRepo.employees[e.employee.ID] = e.employee

	e.ledger = NewLedgerService(e.shiftRepo, e.businessRepo, e.refDataRepo)
	e.reconciler = NewReconcileEngine(e.shiftRepo, e.saleRepo, e.businessRepo, e.catalogRepo, e.refDataRepo)
	e.shifts = NewShiftService(e.shiftRepo, e.businessRepo, e.refDataRepo, e.ledger, e.reconciler, 10)
	e.sequences = NewSequenceService(e.counterRepo)
	e.sales = NewSaleService(e.saleRepo, e.shiftRepo, e.catalogRepo, e.businessRepo, e.refDataRepo,
		e.ledger, e.sequences, e.filer, e.renderer, e.mailer)

	return e
}

func (e *env) addProduct(name, price string, onHand int) *model.Product {
	p := &model.Product{
		ID:         uuid.New(),
		BusinessID: e.business.ID,
		Name:       name,
		ListPrice:  dec(price),
		OnHand:     onHand,
		Active:     true,
	}
	e.catalogRepo.products[p.ID] = p
	return p
}

func (e *env) addService(name, price string, commissionPct *decimal.Decimal) *model.Service {
	s := &model.Service{
		ID:            uuid.New(),
		BusinessID:    e.business.ID,
		Name:          name,
		Price:         dec(price),
		CommissionPct: commissionPct,
		Active:        true,
	}
	e.catalogRepo.services[s.ID] = s
	return s
}

func (e *env) openShift(openingFloat string) (*dto.ShiftResponse, error) {
	return e.shifts.Open(context.Background(), e.operatorID, dto.OpenShiftRequest{
		BusinessID:   e.business.ID.String(),
		OpeningFloat: dec(openingFloat),
	})
}
