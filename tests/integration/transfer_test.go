package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/solarbank/transferd/internal/adapter/http/dto"
	"github.com/solarbank/transferd/tests/testutil"
)

func TestTransfers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	router := newRouter(t, testDB)

	getBalance := func(t *testing.T, id string) decimal.Decimal {
		t.Helper()

		r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("failed to fetch account %s: %d", id, w.Code)
		}

		var resp dto.AccountResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse account: %v", err)
		}

		return decimal.RequireFromString(resp.Balance)
	}

	createTransfer := func(t *testing.T, senderID, receiverID, amount string) *httptest.ResponseRecorder {
		t.Helper()

		body, _ := json.Marshal(dto.CreateTransferRequest{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Amount:     amount,
		})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		return w
	}

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender := testDB.CreateTestAccount(ctx, "sender", decimal.NewFromInt(1000))
		receiver := testDB.CreateTestAccount(ctx, "receiver", decimal.NewFromInt(50))

		w := createTransfer(t, sender.ID, receiver.ID, "100.50")

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp dto.TransferResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.ID == "" {
			t.Fatalf("expected generated transfer ID")
		}
		if resp.CreatedAt.IsZero() {
			t.Fatalf("expected store-assigned timestamp")
		}

		if got := getBalance(t, sender.ID); !got.Equal(decimal.RequireFromString("899.50")) {
			t.Fatalf("expected sender balance 899.50, got %s", got)
		}
		if got := getBalance(t, receiver.ID); !got.Equal(decimal.RequireFromString("150.50")) {
			t.Fatalf("expected receiver balance 150.50, got %s", got)
		}
	})

	t.Run("insufficient funds leaves balances untouched", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender := testDB.CreateTestAccount(ctx, "sender", decimal.NewFromInt(30))
		receiver := testDB.CreateTestAccount(ctx, "receiver", decimal.NewFromInt(5))

		w := createTransfer(t, sender.ID, receiver.ID, "31")

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
		}

		if got := getBalance(t, sender.ID); !got.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("sender balance changed on rejected transfer: %s", got)
		}
		if got := getBalance(t, receiver.ID); !got.Equal(decimal.NewFromInt(5)) {
			t.Fatalf("receiver balance changed on rejected transfer: %s", got)
		}

		// No ledger record either
		r := httptest.NewRequest(http.MethodGet, "/api/v1/transfers/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)

		var list dto.ListTransfersResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("failed to parse ledger: %v", err)
		}
		if len(list.Transfers) != 0 {
			t.Fatalf("expected empty ledger, got %d records", len(list.Transfers))
		}
	})

	t.Run("exact balance drains to zero", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender := testDB.CreateTestAccount(ctx, "sender", decimal.NewFromInt(30))
		receiver := testDB.CreateTestAccount(ctx, "receiver", decimal.Zero)

		w := createTransfer(t, sender.ID, receiver.ID, "30")

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		if got := getBalance(t, sender.ID); !got.IsZero() {
			t.Fatalf("expected sender drained to zero, got %s", got)
		}
	})

	t.Run("missing sender returns 404", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		receiver := testDB.CreateTestAccount(ctx, "receiver", decimal.Zero)

		w := createTransfer(t, testutil.GenerateID(), receiver.ID, "10")

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("same account returns 400", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "solo", decimal.NewFromInt(100))

		w := createTransfer(t, account.ID, account.ID, "10")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("get transfer by id", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		sender := testDB.CreateTestAccount(ctx, "sender", decimal.NewFromInt(100))
		receiver := testDB.CreateTestAccount(ctx, "receiver", decimal.Zero)

		w := createTransfer(t, sender.ID, receiver.ID, "25")
		if w.Code != http.StatusCreated {
			t.Fatalf("transfer setup failed: %d", w.Code)
		}

		var created dto.TransferResponse
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("failed to parse created transfer: %v", err)
		}

		r := httptest.NewRequest(http.MethodGet, "/api/v1/transfers/"+created.ID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var fetched dto.TransferResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
			t.Fatalf("failed to parse fetched transfer: %v", err)
		}
		if fetched.ID != created.ID || fetched.SenderID != sender.ID || fetched.ReceiverID != receiver.ID {
			t.Fatalf("unexpected transfer: %+v", fetched)
		}
	})

	t.Run("list transfers by account", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		a := testDB.CreateTestAccount(ctx, "a", decimal.NewFromInt(100))
		b := testDB.CreateTestAccount(ctx, "b", decimal.NewFromInt(100))
		c := testDB.CreateTestAccount(ctx, "c", decimal.NewFromInt(100))

		if w := createTransfer(t, a.ID, b.ID, "10"); w.Code != http.StatusCreated {
			t.Fatalf("transfer setup failed: %d", w.Code)
		}
		if w := createTransfer(t, b.ID, c.ID, "5"); w.Code != http.StatusCreated {
			t.Fatalf("transfer setup failed: %d", w.Code)
		}

		r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+a.ID+"/transfers", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var list dto.ListTransfersResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("failed to parse list: %v", err)
		}
		if len(list.Transfers) != 1 {
			t.Fatalf("expected 1 transfer for account a, got %d", len(list.Transfers))
		}

		// b participated in both
		r = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+b.ID+"/transfers", nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, r)

		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("failed to parse list: %v", err)
		}
		if len(list.Transfers) != 2 {
			t.Fatalf("expected 2 transfers for account b, got %d", len(list.Transfers))
		}
	})
}
