// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironcore-dev/fmc-automation/internal/config"
	"github.com/ironcore-dev/fmc-automation/internal/fmc"
)

var _ = Describe("OSPF Reconciler", func() {
	const device = "dev-1"
	networks := map[string]string{"attacker_id": "net-a", "dmz_id": "net-d"}

	BeforeEach(func() {
		server.Reset()
	})

	It("Should replace existing configurations with a single fresh one", func() {
		By("Seeding two existing configurations")
		server.AddOSPFRoute(device, []byte(`{"type":"OspfRoute","id":"old-1","processId":"1"}`))
		server.AddOSPFRoute(device, []byte(`{"type":"OspfRoute","id":"old-2","processId":"2"}`))

		r := &OSPFReconciler{Provider: connect()}
		report, err := r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())

		By("Verifying both were deleted before the create")
		Expect(report.Deletions).To(HaveLen(2))
		Expect(report.Clean()).To(BeTrue())
		var methods []string
		for _, req := range server.Requests() {
			if req.Method != http.MethodGet {
				methods = append(methods, req.Method)
			}
		}
		Expect(methods).To(Equal([]string{http.MethodDelete, http.MethodDelete, http.MethodPost}))

		By("Verifying the stored configuration")
		routes := server.OSPFRoutes(device)
		Expect(routes).To(HaveLen(1))
		Expect(routes[0].Get("processId").String()).To(Equal("1"))
		Expect(routes[0].Get("enableProcess").String()).To(Equal("PROCESS_1"))
		Expect(routes[0].Get("areas.0.areaId").String()).To(Equal("0"))
		Expect(routes[0].Get("areas.0.areaType.type").String()).To(Equal("normal"))
		Expect(routes[0].Get("areas.0.areaNetworks.#.id").String()).To(Equal(`["net-a","net-d"]`))
		Expect(routes[0].Get("areas.0.areaNetworks.#.name").String()).To(Equal(`["Attacker","DMZ"]`))
		Expect(routes[0].Get("redistributeProtocols").IsArray()).To(BeTrue())
		Expect(report.Created.ID).To(Equal(routes[0].Get("id").String()))
	})

	It("Should converge on repeated runs", func() {
		r := &OSPFReconciler{Provider: connect()}
		for range 3 {
			_, err := r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.OSPFRoutes(device)).To(HaveLen(1))
		}
	})

	It("Should tolerate a failed deletion", func() {
		server.AddOSPFRoute(device, []byte(`{"type":"OspfRoute","id":"stuck"}`))
		server.Fail(http.MethodDelete, "stuck", http.StatusConflict, 1)

		report, err := (&OSPFReconciler{Provider: connect()}).Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Clean()).To(BeFalse())
		Expect(fmc.StatusCode(report.FailedDeletions()[0].Err)).To(Equal(http.StatusConflict))
		Expect(report.Warnings).To(ContainElement(ContainSubstring("2 OSPF configurations exist")))
	})

	It("Should fail without verification when the create is rejected", func() {
		server.Fail(http.MethodPost, "ospfv2routes", http.StatusUnprocessableEntity, 1)

		report, err := (&OSPFReconciler{Provider: connect()}).Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).To(HaveOccurred())
		Expect(fmc.StatusCode(err)).To(Equal(http.StatusUnprocessableEntity))
		Expect(report.Verified).To(BeNil())
		Expect(server.Count(http.MethodGet, "ospfv2routes")).To(Equal(1))
	})

	It("Should detect a lost write", func() {
		server.DropWrites(true)

		_, err := (&OSPFReconciler{Provider: connect()}).Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).To(MatchError(ErrNotPersisted))
	})

	It("Should not contact the management center without networks", func() {
		_, err := (&OSPFReconciler{Provider: connect()}).Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: map[string]string{"unknown": "x"}})
		Expect(err).To(MatchError(ErrNoNetworks))
		Expect(server.Requests()).To(BeEmpty())
	})

	It("Should enable the process and deploy when asked to", func() {
		r := &OSPFReconciler{Provider: connect(), EnableProcess: true, Deploy: true}
		report, err := r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())

		Expect(server.OSPFProcess(device).Get("enabled").Bool()).To(BeTrue())
		Expect(report.Deployment).NotTo(BeNil())
		Expect(report.Deployment.Forced).To(BeTrue())
		Expect(report.Deployment.TaskID).NotTo(BeEmpty())
		Expect(server.Deployments()).To(HaveLen(1))

		By("Leaving an enabled process alone")
		_, err = r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())
		Expect(server.Count(http.MethodPost, "ospfv2process")).To(Equal(1))
	})

	It("Should fall back to a standard deployment", func() {
		server.Fail(http.MethodPost, "deploymentrequests", http.StatusBadRequest, 1)

		report, err := (&OSPFReconciler{Provider: connect(), Deploy: true}).Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Deployment.Err).NotTo(HaveOccurred())
		Expect(report.Deployment.Forced).To(BeFalse())
		deployments := server.Deployments()
		Expect(deployments).To(HaveLen(1))
		Expect(deployments[0].Get("forceDeploy").Bool()).To(BeFalse())
	})

	It("Should update in place with the update strategy", func() {
		id := server.AddOSPFRoute(device, []byte(`{"type":"OspfRoute","processId":"1"}`))

		r := &OSPFReconciler{Provider: connect(), Strategy: config.StrategyUpdate}
		report, err := r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Updated).To(BeTrue())
		Expect(server.Count(http.MethodDelete, "ospfv2routes")).To(BeZero())
		Expect(server.Count(http.MethodPut, id)).To(Equal(1))

		routes := server.OSPFRoutes(device)
		Expect(routes).To(HaveLen(1))
		Expect(routes[0].Get("id").String()).To(Equal(id))
		Expect(routes[0].Get("areas.0.areaNetworks.#").Int()).To(BeEquivalentTo(2))

		By("Skipping the update once nothing changes")
		_, err = r.Reconcile(ctx, OSPFRequest{DeviceID: device, NetworkIDs: networks})
		Expect(err).NotTo(HaveOccurred())
		Expect(server.Count(http.MethodPut, id)).To(Equal(1))
	})
})
