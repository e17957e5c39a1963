package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/internal/http/router"
	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store/storetest"
)

type memTx struct{ db *storetest.DB }

func (m memTx) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	return m.db.Tx(func() error { return fn(m.db) })
}

var _ = Describe("API routes", func() {
	var (
		engine   *gin.Engine
		db       *storetest.DB
		services *service.Services
	)

	provision := func(perms ...model.Permission) string {
		_, secret, err := services.ServiceIdentities().Create(context.Background(), service.CreateServiceIdentityParams{
			Name:        "billing",
			Permissions: perms,
		})
		Expect(err).NotTo(HaveOccurred())
		return secret
	}

	call := func(secret, method, path string, body any) (int, map[string]any) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("Authorization", "Bearer "+secret)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return w.Code, resp
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		db = storetest.New()
		services = service.NewServices(db, memTx{db: db}, nil, nil, nil, nil)
		engine = gin.New()
		router.SetupRoutes(engine, services, router.RouterConfig{AdminAPIKey: "admin", RateLimitWindow: time.Hour})
	})

	It("serves health without credentials", func() {
		code, resp := call("", http.MethodGet, "/health", nil)

		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["status"]).To(Equal("ok"))
	})

	It("drives the two level approval scenario end to end", func() {
		secret := provision(model.PermissionApprovalsRead, model.PermissionApprovalsWrite)

		code, resp := call(secret, http.MethodPost, "/api/v1/approvals", map[string]any{
			"approval_type": "TASK",
			"title":         "ship it",
			"approvers": []map[string]any{
				{"user_id": "u1", "level": 1},
				{"user_id": "u2", "level": 2},
			},
		})
		Expect(code).To(Equal(http.StatusCreated))
		data := resp["data"].(map[string]any)
		Expect(data["status"]).To(Equal("PENDING"))
		Expect(data["current_level"]).To(BeNumerically("==", 1))
		id := db.AllApprovals()[0].ID
		base := fmt.Sprintf("/api/v1/approvals/%d", id)

		code, resp = call(secret, http.MethodPost, base+"/approve", map[string]any{"user_id": "u1"})
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["data"].(map[string]any)["current_level"]).To(BeNumerically("==", 2))

		code, resp = call(secret, http.MethodPost, base+"/approve", map[string]any{"user_id": "u2"})
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["data"].(map[string]any)["status"]).To(Equal("APPROVED"))
		Expect(resp["data"].(map[string]any)["current_level"]).To(BeNumerically("==", 3))

		code, _ = call(secret, http.MethodPost, base+"/approve", nil)
		Expect(code).To(Equal(http.StatusConflict))
		code, _ = call(secret, http.MethodPost, base+"/reject", nil)
		Expect(code).To(Equal(http.StatusConflict))

		code, resp = call(secret, http.MethodGet, base, nil)
		Expect(code).To(Equal(http.StatusOK))
		Expect(resp["data"].(map[string]any)["decisions"]).To(HaveLen(2))
	})

	It("rejects non-contiguous levels with 400", func() {
		secret := provision(model.PermissionAll)

		code, resp := call(secret, http.MethodPost, "/api/v1/approvals", map[string]any{
			"approval_type": "TASK",
			"title":         "gap",
			"approvers": []map[string]any{
				{"user_id": "u1", "level": 1},
				{"user_id": "u3", "level": 3},
			},
		})

		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(resp["error"]).To(ContainSubstring("contiguous"))
		Expect(db.AllApprovals()).To(BeEmpty())
	})

	It("scopes resources to the calling service", func() {
		owner := provision(model.PermissionAll)
		other := provision(model.PermissionAll)

		code, _ := call(owner, http.MethodPost, "/api/v1/approvals", map[string]any{
			"approval_type": "TASK",
			"title":         "mine",
			"approvers":     []map[string]any{{"user_id": "u1", "level": 1}},
		})
		Expect(code).To(Equal(http.StatusCreated))
		path := fmt.Sprintf("/api/v1/approvals/%d", db.AllApprovals()[0].ID)

		code, _ = call(other, http.MethodGet, path, nil)
		Expect(code).To(Equal(http.StatusNotFound))
		code, _ = call(other, http.MethodDelete, path, nil)
		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("enforces authentication and permissions", func() {
		reader := provision(model.PermissionApprovalsRead)

		code, _ := call("", http.MethodGet, "/api/v1/approvals", nil)
		Expect(code).To(Equal(http.StatusUnauthorized))

		code, _ = call("sk_unknown", http.MethodGet, "/api/v1/approvals", nil)
		Expect(code).To(Equal(http.StatusUnauthorized))

		code, _ = call(reader, http.MethodGet, "/api/v1/approvals", nil)
		Expect(code).To(Equal(http.StatusOK))

		code, _ = call(reader, http.MethodPost, "/api/v1/webhooks", map[string]any{})
		Expect(code).To(Equal(http.StatusForbidden))
	})

	It("applies the per-service rate limit", func() {
		limit := int32(2)
		_, secret, err := services.ServiceIdentities().Create(context.Background(), service.CreateServiceIdentityParams{
			Name:        "chatty",
			Permissions: []model.Permission{model.PermissionAll},
			RateLimit:   &limit,
		})
		Expect(err).NotTo(HaveOccurred())

		for range 2 {
			code, _ := call(secret, http.MethodGet, "/api/v1/approvals", nil)
			Expect(code).To(Equal(http.StatusOK))
		}
		code, resp := call(secret, http.MethodGet, "/api/v1/approvals", nil)

		Expect(code).To(Equal(http.StatusTooManyRequests))
		Expect(resp["error"]).To(Equal("rate limit exceeded"))
	})

	It("provisions services through the admin surface", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin/services", bytes.NewBufferString(`{"name":"erp","permissions":["stats:read"]}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Key", "admin")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp struct {
			Data struct {
				Secret string `json:"secret"`
			} `json:"data"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())

		code, _ := call(resp.Data.Secret, http.MethodGet, "/api/v1/stats/approvals", nil)
		Expect(code).To(Equal(http.StatusOK))
	})

	It("registers a webhook and lists it without the secret", func() {
		secret := provision(model.PermissionWebhooksRead, model.PermissionWebhooksWrite)

		code, resp := call(secret, http.MethodPost, "/api/v1/webhooks", map[string]any{
			"url":    "https://example.com/hook",
			"events": []string{"approval.approved", "approval.rejected"},
		})
		Expect(code).To(Equal(http.StatusCreated))
		Expect(resp["data"].(map[string]any)["secret"]).To(HaveLen(64))

		code, resp = call(secret, http.MethodGet, "/api/v1/webhooks", nil)
		Expect(code).To(Equal(http.StatusOK))
		items := resp["data"].([]any)
		Expect(items).To(HaveLen(1))
		Expect(items[0]).NotTo(HaveKey("secret"))

		code, _ = call(secret, http.MethodGet, "/api/v1/webhooks/schema", nil)
		Expect(code).To(Equal(http.StatusOK))
	})
})
