package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mibolsillo/internal/core"
	"mibolsillo/internal/fetch"
	"mibolsillo/internal/i18n"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/services"
	"mibolsillo/internal/session"
)

// svc returns the resource services bound to the request's scoped client.
func (s *Server) svc(r *http.Request) *services.Set {
	return services.New(session.ClientFromContext(r.Context()))
}

type billsListView struct {
	Rows     []billRowView
	ErrorKey string
}

type billRowView struct {
	ID       string
	Bill     core.Bill
	Expanded bool
	Lang     string
	ErrorKey string
}

type billDetailView struct {
	Bill     core.Bill
	ErrorKey string // load failure, shown instead of the bill
	FlashKey string // action failure, shown above the bill
}

type draftView struct {
	Draft      *core.DraftBill
	ErrorKey   string
	Currencies []core.Currency
}

var currencies = []core.Currency{core.PEN, core.USD}

// handleDashboard renders the page shell; the list loads through /ui/bills.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "dashboard_page", pageView{
		Title:  "dashboard.title",
		Active: "home",
	})
}

// handleBillsList renders the bill list, or an error banner in its place.
func (s *Server) handleBillsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := fetch.Load(ctx, "bills", s.svc(r).Bills.GetAll)
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		s.renderPartial(w, r, "bills_list", billsListView{ErrorKey: "dashboard.errorLoad"})
		return
	}

	lang := i18n.FromContext(ctx)
	view := billsListView{Rows: make([]billRowView, 0, len(res.Data))}
	for _, b := range res.Data {
		view.Rows = append(view.Rows, billRowView{ID: b.BillID, Bill: b, Lang: lang})
	}
	s.renderPartial(w, r, "bills_list", view)
}

// handleBillRow re-renders one row expanded or collapsed. The toggle link in
// the row asks for the opposite state.
func (s *Server) handleBillRow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	row := billRowView{
		ID:       id,
		Expanded: r.URL.Query().Get("expanded") == "1",
		Lang:     i18n.FromContext(ctx),
	}

	res := fetch.Load(ctx, "bill", func(ctx context.Context) (core.Bill, error) {
		return s.svc(r).Bills.GetByID(ctx, id)
	})
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		row.ErrorKey = errorKey(res.Err, "billDetail.notFound", "billDetail.errorLoad")
	} else {
		row.Bill = res.Data
	}
	s.renderPartial(w, r, "bill_row_partial", row)
}

// handleBillDetail shows one bill with its expenses.
func (s *Server) handleBillDetail(w http.ResponseWriter, r *http.Request) {
	s.renderBillDetail(w, r, http.StatusOK, "")
}

func (s *Server) renderBillDetail(w http.ResponseWriter, r *http.Request, status int, flashKey string) {
	id := mux.Vars(r)["id"]
	view := billDetailView{FlashKey: flashKey}

	res := fetch.Load(r.Context(), "bill", func(ctx context.Context) (core.Bill, error) {
		return s.svc(r).Bills.GetByID(ctx, id)
	})
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		view.ErrorKey = errorKey(res.Err, "billDetail.notFound", "billDetail.errorLoad")
	} else {
		view.Bill = res.Data
	}
	s.renderPage(w, r, status, "bill_detail_page", pageView{
		Title:  "billDetail.title",
		Active: "home",
		Data:   view,
	})
}

// handleDeleteBill removes a bill. HTMX callers get the row removed and a
// bill:deleted event, or a redirect home when ?redirect=1; the plain form
// fallback is redirected home.
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentBills)
	lang := i18n.FromContext(ctx)

	err := s.svc(r).Bills.Delete(ctx, id)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		logger.ErrorContext(ctx, "Failed to delete bill",
			applog.FieldBillID, id,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldError, err)
		if isHTMX(r) {
			NewHTMXResponse().
				TriggerErrorNotification(i18n.T(lang, "dashboard.errorDelete")).
				Reswap("none").
				Write(w)
			return
		}
		s.renderBillDetail(w, r, http.StatusBadGateway, "dashboard.errorDelete")
		return
	}

	logger.InfoContext(ctx, "Bill deleted",
		applog.FieldBillID, id,
		applog.FieldOperation, applog.OpDelete)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	resp := NewHTMXResponse().TriggerBillDeleted(id)
	if r.URL.Query().Get("redirect") == "1" {
		resp.Redirect("/")
	}
	resp.Write(w)
}

// handleNewBill renders an empty bill form dated today.
func (s *Server) handleNewBill(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "bill_new_page", pageView{
		Title:  "create.title",
		Active: "home",
		Data:   draftView{Draft: core.NewDraftBill(time.Now()), Currencies: currencies},
	})
}

// handleDraft applies one line operation and re-renders the lines with the
// running total. Nothing is sent to the API.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	d := ParseDraftForm(r.PostForm)
	if err := ApplyDraftOp(d, r.PostForm); err != nil {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Ignoring draft operation",
			"op", r.PostForm.Get("op"),
			applog.FieldError, err)
	}
	s.renderPartial(w, r, "draft_lines", draftView{Draft: d, Currencies: currencies})
}

// handleCreateBill validates the draft and posts it. Invalid drafts are
// re-rendered with 422 and never reach the API.
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentBills)
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	d := ParseDraftForm(r.PostForm)

	req, err := d.Request()
	if err != nil {
		logger.DebugContext(ctx, "Bill form rejected",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldLineCount, len(d.Lines),
			applog.FieldError, err)
		s.renderBillForm(w, r, http.StatusUnprocessableEntity, d, validationKey(err))
		return
	}

	bill, err := s.svc(r).Bills.Create(ctx, req)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		logger.ErrorContext(ctx, "Failed to create bill",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldLineCount, len(req.Expenses),
			applog.FieldError, err)
		s.renderBillForm(w, r, http.StatusBadGateway, d, "create.errorCreate")
		return
	}

	logger.InfoContext(ctx, "Bill created",
		applog.FieldBillID, bill.BillID,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCurrency, req.Currency.String(),
		applog.FieldLineCount, len(req.Expenses))
	s.redirect(w, r, "/")
}

// renderBillForm answers HTMX submits with the form fragment and plain
// submits with the whole page.
func (s *Server) renderBillForm(w http.ResponseWriter, r *http.Request, status int, d *core.DraftBill, errKey string) {
	view := draftView{Draft: d, ErrorKey: errKey, Currencies: currencies}
	if isHTMX(r) {
		s.render(w, r, status, "bill_form", pageView{Data: view})
		return
	}
	s.renderPage(w, r, status, "bill_new_page", pageView{
		Title:  "create.title",
		Active: "home",
		Data:   view,
	})
}

func validationKey(err error) string {
	if errors.Is(err, core.ErrNoValidExpenses) {
		return "create.errorNoExpenses"
	}
	return "create.errorRequired"
}
