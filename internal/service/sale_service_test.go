package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) saleRequest(shiftID string, lines ...dto.SaleLineRequest) dto.ProcessSaleRequest {
	return dto.ProcessSaleRequest{
		ShiftID:         shiftID,
		PaymentMethodID: e.cashMethod.ID.String(),
		Lines:           lines,
	}
}

func productLine(p *model.Product, qty int) dto.SaleLineRequest {
	id := p.ID.String()
	return dto.SaleLineRequest{ProductID: &id, Quantity: qty}
}

func serviceLine(s *model.Service, qty int) dto.SaleLineRequest {
	id := s.ID.String()
	return dto.SaleLineRequest{ServiceID: &id, Quantity: qty}
}

func TestProcessSale_HappyPath(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("50.00")
	require.NoError(t, err)

	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 2)))
	require.NoError(t, err)

	assert.True(t, resp.Sale.Subtotal.Equal(dec("20.00")))
	assert.True(t, resp.Sale.Tax.Equal(dec("2.40")))
	assert.True(t, resp.Sale.Total.Equal(dec("22.40")))
	assert.Equal(t, "001-001-000000001", resp.Sale.ReceiptNumber)
	assert.Equal(t, model.SaleIssued, resp.Sale.Status)
	assert.Equal(t, model.ReceiptSimple, resp.Sale.ReceiptKind)
	require.Len(t, resp.Sale.Lines, 1)
	assert.Equal(t, "Pomade", resp.Sale.Lines[0].ItemName)
	assert.Equal(t, 3, product.OnHand)

	// The sale appended an ingress ledger entry for the full total.
	assert.Equal(t, model.KindSale, resp.Movement.Kind)
	assert.Equal(t, model.DirectionIngress, resp.Movement.Direction)
	assert.True(t, resp.Movement.Amount.Equal(dec("22.40")))
	require.NotNil(t, resp.Movement.SaleID)
	assert.Equal(t, resp.Sale.ID, *resp.Movement.SaleID)

	require.NotNil(t, resp.Document)
	assert.Nil(t, resp.DocumentWarning)
}

func TestProcessSale_SequentialReceiptNumbers(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 10)

	opened, err := e.openShift("50.00")
	require.NoError(t, err)

	first, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)
	second, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)

	assert.Equal(t, "001-001-000000001", first.Sale.ReceiptNumber)
	assert.Equal(t, "001-001-000000002", second.Sale.ReceiptNumber)
}

func TestProcessSale_InsufficientStock(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 1)

	opened, err := e.openShift("50.00")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 2)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))

	// Nothing moved: stock intact, no sale, only the opening ledger entry.
	assert.Equal(t, 1, product.OnHand)
	assert.Empty(t, e.saleRepo.sales)
	movs, _ := e.shiftRepo.ListMovements(context.Background(), uuid.MustParse(opened.ID))
	assert.Len(t, movs, 1)
}

func TestProcessSale_StockPrecheckCoversAllLines(t *testing.T) {
	e := newEnv()
	plenty := e.addProduct("Shampoo", "8.00", 10)
	scarce := e.addProduct("Pomade", "10.00", 1)

	opened, err := e.openShift("50.00")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(plenty, 2), productLine(scarce, 3)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))

	// The earlier line was not decremented either.
	assert.Equal(t, 10, plenty.OnHand)
	assert.Equal(t, 1, scarce.OnHand)
}

func TestProcessSale_PricePrecedence(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 20)
	promo := dec("8.00")
	discount := dec("7.00")
	product.PromoPrice = &promo
	product.DiscountPrice = &discount

	opened, err := e.openShift("0")
	require.NoError(t, err)

	// Discount price beats promo and list.
	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)
	assert.True(t, resp.Sale.Lines[0].UnitPrice.Equal(dec("7.00")))

	// An explicit override beats everything.
	override := dec("5.00")
	line := productLine(product, 1)
	line.UnitPriceOverride = &override
	resp, err = e.sales.ProcessSale(context.Background(), e.operatorID, e.saleRequest(opened.ID, line))
	require.NoError(t, err)
	assert.True(t, resp.Sale.Lines[0].UnitPrice.Equal(dec("5.00")))

	// Without a discount, the promo price applies.
	product.DiscountPrice = nil
	resp, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)
	assert.True(t, resp.Sale.Lines[0].UnitPrice.Equal(dec("8.00")))
}

func TestProcessSale_LineMustReferenceExactlyOneItem(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	svc := e.addService("Haircut", "30.00", nil)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	pid := product.ID.String()
	sid := svc.ID.String()

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, dto.SaleLineRequest{ProductID: &pid, ServiceID: &sid, Quantity: 1}))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidLineItem))

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, dto.SaleLineRequest{Quantity: 1}))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidLineItem))
}

func TestProcessSale_InactiveProductRejected(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	product.Active = false

	opened, err := e.openShift("0")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidLineItem))
}

func TestProcessSale_ShiftNotOpen(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("0")
	require.NoError(t, err)
	_, err = e.shifts.Close(context.Background(), e.operatorID, dto.CloseShiftRequest{
		ShiftID:      opened.ID,
		CountedTotal: dec("0"),
	})
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindShiftNotOpen))
}

func TestProcessSale_OperatorMismatch(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), uuid.New(),
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindOperatorMismatch))
}

func TestProcessSale_MissingEmissionCodes(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	e.employee.EmissionPointCode = nil

	opened, err := e.openShift("0")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindMissingEmissionCodes))
}

func TestProcessSale_FormalInvoiceFiled(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	req := e.saleRequest(opened.ID, productLine(product, 1))
	req.WantsFormalInvoice = true
	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID, req)
	require.NoError(t, err)

	assert.Equal(t, model.ReceiptFormalInvoice, resp.Sale.ReceiptKind)
	assert.Equal(t, model.SaleFiled, resp.Sale.Status)
	assert.Equal(t, 1, e.filer.calls)
}

func TestProcessSale_FilingFailureAborts(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	e.filer.err = errors.New("sidecar unreachable")

	opened, err := e.openShift("0")
	require.NoError(t, err)

	req := e.saleRequest(opened.ID, productLine(product, 1))
	req.WantsFormalInvoice = true
	_, err = e.sales.ProcessSale(context.Background(), e.operatorID, req)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindFilingFailed))
}

func TestProcessSale_SimpleReceiptNeverFiles(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	e.filer.err = errors.New("sidecar unreachable")

	opened, err := e.openShift("0")
	require.NoError(t, err)

	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)
	assert.Equal(t, 0, e.filer.calls)
	assert.Equal(t, model.SaleIssued, resp.Sale.Status)
}

func TestProcessSale_RendererFailureDegrades(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	e.renderer.err = errors.New("fpdf blew up")

	opened, err := e.openShift("0")
	require.NoError(t, err)

	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)

	assert.Nil(t, resp.Document)
	require.NotNil(t, resp.DocumentWarning)
	// The sale itself stands.
	assert.Len(t, e.saleRepo.sales, 1)
}

func TestProcessSale_MailsCustomerReceipt(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	email := "ana@example.com"
	customer := &model.Customer{ID: uuid.New(), BusinessID: e.business.ID, Name: "Ana", Email: &email}
	e.businessRepo.customers[customer.ID] = customer

	opened, err := e.openShift("0")
	require.NoError(t, err)

	req := e.saleRequest(opened.ID, productLine(product, 1))
	cid := customer.ID.String()
	req.CustomerID = &cid
	_, err = e.sales.ProcessSale(context.Background(), e.operatorID, req)
	require.NoError(t, err)

	assert.Equal(t, []string{email}, e.mailer.sentTo)
}

func TestProcessSale_NoEmailNoMail(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	customer := &model.Customer{ID: uuid.New(), BusinessID: e.business.ID, Name: "Ana"}
	e.businessRepo.customers[customer.ID] = customer

	opened, err := e.openShift("0")
	require.NoError(t, err)

	req := e.saleRequest(opened.ID, productLine(product, 1))
	cid := customer.ID.String()
	req.CustomerID = &cid
	_, err = e.sales.ProcessSale(context.Background(), e.operatorID, req)
	require.NoError(t, err)

	assert.Empty(t, e.mailer.sentTo)
}

func TestProcessSale_MixedProductAndServiceTotals(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)
	svc := e.addService("Haircut", "30.00", nil)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	resp, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1), serviceLine(svc, 2)))
	require.NoError(t, err)

	// 10.00 + 2×30.00 = 70.00, tax 8.40
	assert.True(t, resp.Sale.Subtotal.Equal(dec("70.00")))
	assert.True(t, resp.Sale.Tax.Equal(dec("8.40")))
	assert.True(t, resp.Sale.Total.Equal(dec("78.40")))
	// Services never touch stock.
	assert.Equal(t, 4, product.OnHand)
}

func TestGetSale(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	created, err := e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)

	got, err := e.sales.GetSale(context.Background(), uuid.MustParse(created.Sale.ID))
	require.NoError(t, err)
	assert.Equal(t, created.Sale.ReceiptNumber, got.ReceiptNumber)

	_, err = e.sales.GetSale(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestListSales_FilterByShift(t *testing.T) {
	e := newEnv()
	product := e.addProduct("Pomade", "10.00", 5)

	opened, err := e.openShift("0")
	require.NoError(t, err)

	_, err = e.sales.ProcessSale(context.Background(), e.operatorID,
		e.saleRequest(opened.ID, productLine(product, 1)))
	require.NoError(t, err)

	list, err := e.sales.ListSales(context.Background(), dto.SaleFilter{ShiftID: opened.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Data, 1)

	empty, err := e.sales.ListSales(context.Background(), dto.SaleFilter{ShiftID: uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Total)
}
