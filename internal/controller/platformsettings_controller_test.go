// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"bytes"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/progress"
)

var _ = Describe("PlatformSettings Reconciler", func() {
	const device = "dev-1"

	BeforeEach(func() {
		server.Reset()
	})

	It("Should assign the policy with the given name", func() {
		server.AddPlatformSettingsPolicy("default")
		id := server.AddPlatformSettingsPolicy("vFTD-platform-policy")

		var out bytes.Buffer
		r := &PlatformSettingsReconciler{Provider: connect(), Printer: progress.New(&out)}
		policy, err := r.Reconcile(ctx, PlatformSettingsRequest{PolicyName: "vFTD-platform-policy", DeviceID: device})
		Expect(err).NotTo(HaveOccurred())
		Expect(policy.ID).To(Equal(id))
		Expect(policy.Type).To(Equal(v1alpha1.TypeFTDPlatformSettingsPolicy))

		assignments := server.Assignments()
		Expect(assignments).To(HaveLen(1))
		Expect(assignments[0].Get("type").String()).To(Equal(v1alpha1.TypePolicyAssignment))
		Expect(assignments[0].Get("policy.id").String()).To(Equal(id))
		Expect(assignments[0].Get("policy.name").String()).To(Equal("vFTD-platform-policy"))
		Expect(assignments[0].Get("targets.#.id").String()).To(Equal(`["dev-1"]`))
		Expect(out.String()).To(ContainSubstring("Successfully created policy assignment"))
	})

	It("Should fail for an unknown policy", func() {
		server.AddPlatformSettingsPolicy("default")

		_, err := (&PlatformSettingsReconciler{Provider: connect()}).Reconcile(ctx, PlatformSettingsRequest{PolicyName: "missing", DeviceID: device})
		Expect(err).To(MatchError(ErrPolicyNotFound))
		Expect(server.Count(http.MethodPost, "policyassignments")).To(BeZero())
	})

	It("Should fail when the assignment is rejected", func() {
		server.AddPlatformSettingsPolicy("default")
		server.Fail(http.MethodPost, "policyassignments", http.StatusBadRequest, 1)

		_, err := (&PlatformSettingsReconciler{Provider: connect()}).Reconcile(ctx, PlatformSettingsRequest{PolicyName: "default", DeviceID: device})
		Expect(err).To(MatchError(ContainSubstring("failed to assign")))
	})

	It("Should validate the request", func() {
		r := &PlatformSettingsReconciler{Provider: connect()}
		_, err := r.Reconcile(ctx, PlatformSettingsRequest{DeviceID: device})
		Expect(err).To(HaveOccurred())
		_, err = r.Reconcile(ctx, PlatformSettingsRequest{PolicyName: "default"})
		Expect(err).To(MatchError(ErrNoDevice))
		Expect(server.Requests()).To(BeEmpty())
	})
})
