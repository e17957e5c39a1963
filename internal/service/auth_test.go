package service_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/approvals/internal/model"
	"basegraph.app/approvals/internal/service"
	"basegraph.app/approvals/internal/store/storetest"
)

var _ = Describe("AuthService", func() {
	var (
		ctx        context.Context
		db         *storetest.DB
		identities service.ServiceIdentityService
		auth       service.AuthService
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = storetest.New()
		identities = service.NewServiceIdentityService(db.ServiceIdentities(), nil)
		auth = service.NewAuthService(db.ServiceIdentities())
	})

	It("authenticates a freshly provisioned secret", func() {
		identity, secret, err := identities.Create(ctx, service.CreateServiceIdentityParams{
			Name:        "billing",
			Permissions: []model.Permission{model.PermissionApprovalsRead},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.HasPrefix(secret, "sk_")).To(BeTrue())
		Expect(identity.SecretHash).To(Equal(service.HashSecret(secret)))
		Expect(identity.RateLimit).To(Equal(int32(service.DefaultRateLimit)))

		ac, err := auth.Authenticate(ctx, secret)

		Expect(err).NotTo(HaveOccurred())
		Expect(ac.ServiceID).To(Equal(identity.ID))
		Expect(ac.ServiceName).To(Equal("billing"))
		Expect(ac.Authorize(model.PermissionApprovalsRead)).To(BeTrue())
		Expect(ac.Authorize(model.PermissionApprovalsWrite)).To(BeFalse())
	})

	It("rejects unknown, blank and deactivated credentials", func() {
		identity, secret, err := identities.Create(ctx, service.CreateServiceIdentityParams{
			Name:        "ops",
			Permissions: []model.Permission{model.PermissionAll},
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = auth.Authenticate(ctx, "")
		Expect(err).To(MatchError(service.ErrUnauthorized))
		_, err = auth.Authenticate(ctx, "sk_nope")
		Expect(err).To(MatchError(service.ErrUnauthorized))

		_, err = identities.Deactivate(ctx, identity.ID)
		Expect(err).NotTo(HaveOccurred())
		_, err = auth.Authenticate(ctx, secret)
		Expect(err).To(MatchError(service.ErrUnauthorized))
	})

	It("grants everything to the wildcard permission", func() {
		ac := &service.AuthContext{Permissions: []model.Permission{model.PermissionAll}}

		Expect(ac.Authorize(model.PermissionStatsRead)).To(BeTrue())
		Expect((*service.AuthContext)(nil).Authorize(model.PermissionStatsRead)).To(BeFalse())
	})

	DescribeTable("validates provisioning input",
		func(params service.CreateServiceIdentityParams) {
			_, _, err := identities.Create(ctx, params)
			Expect(err).To(MatchError(service.ErrInvalidInput))
		},
		Entry("blank name", service.CreateServiceIdentityParams{Permissions: []model.Permission{model.PermissionAll}}),
		Entry("no permissions", service.CreateServiceIdentityParams{Name: "x"}),
		Entry("unknown permission", service.CreateServiceIdentityParams{Name: "x", Permissions: []model.Permission{"root"}}),
		Entry("zero rate limit", service.CreateServiceIdentityParams{Name: "x", Permissions: []model.Permission{model.PermissionAll}, RateLimit: ptr(int32(0))}),
	)

	It("returns not found when deactivating an unknown identity", func() {
		_, err := identities.Deactivate(ctx, 42)
		Expect(err).To(MatchError(service.ErrNotFound))
	})
})
