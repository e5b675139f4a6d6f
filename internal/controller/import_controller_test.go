// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"
)

var _ = Describe("Import Reconciler", func() {
	var dir string

	BeforeEach(func() {
		server.Reset()
		dir = GinkgoT().TempDir()
	})

	backup := func(name string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte("sfo-content"), 0o600)).To(Succeed())
		return path
	}

	It("Should upload a backup with shared policies", func() {
		r := &ImportReconciler{Provider: connect()}
		res, err := r.Reconcile(ctx, ImportRequest{Path: backup("automation_backup.sfo"), DeviceIDs: []string{"dev-1", "dev-2"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(gjson.ValidBytes(res.Raw)).To(BeTrue())

		imports := server.Imports()
		Expect(imports).To(HaveLen(1))
		Expect(imports[0].Get("name").String()).To(Equal(DefaultImportName))
		Expect(imports[0].Get("fileName").String()).To(Equal("automation_backup.sfo"))
		Expect(imports[0].Get("fileSize").Int()).To(BeEquivalentTo(len("sfo-content")))
		Expect(imports[0].Get("deviceList").String()).To(Equal(`["dev-1","dev-2"]`))
		Expect(imports[0].Get("importOptions.includeSharedPolicies").Bool()).To(BeTrue())
		Expect(imports[0].Get("importOptions.conflictOption").String()).To(Equal("LATEST"))
	})

	It("Should only include site-to-site VPN policies for s2s backups", func() {
		_, err := (&ImportReconciler{Provider: connect()}).Reconcile(ctx, ImportRequest{Path: backup("hq_s2s.sfo"), Name: "VPN", DeviceIDs: []string{"dev-1"}})
		Expect(err).NotTo(HaveOccurred())

		imports := server.Imports()
		Expect(imports).To(HaveLen(1))
		Expect(imports[0].Get("name").String()).To(Equal("VPN"))
		Expect(imports[0].Get("importOptions.includeS2sVpnPoliciesOnly").Bool()).To(BeTrue())
		Expect(imports[0].Get("importOptions.includeSharedPolicies").Exists()).To(BeFalse())
	})

	It("Should fail for a missing file without contacting the management center", func() {
		_, err := (&ImportReconciler{Provider: connect()}).Reconcile(ctx, ImportRequest{Path: filepath.Join(dir, "missing.sfo"), DeviceIDs: []string{"dev-1"}})
		Expect(err).To(MatchError(ContainSubstring("not found")))
		Expect(server.Requests()).To(BeEmpty())

		_, err = (&ImportReconciler{Provider: connect()}).Reconcile(ctx, ImportRequest{Path: dir, DeviceIDs: []string{"dev-1"}})
		Expect(err).To(HaveOccurred())
	})

	It("Should report a rejected import", func() {
		server.Fail(http.MethodPost, "imports", http.StatusBadRequest, 1)
		_, err := (&ImportReconciler{Provider: connect()}).Reconcile(ctx, ImportRequest{Path: backup("a.sfo"), DeviceIDs: []string{"dev-1"}})
		Expect(err).To(MatchError(ContainSubstring("failed to import backup")))
	})
})
