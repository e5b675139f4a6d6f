// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/progress"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

// DefaultImportName is the name of the import job unless one is given.
const DefaultImportName = "Automation_Backup"

type ImportRequest struct {
	// Path of the backup file.
	Path      string
	Name      string
	DeviceIDs []string
}

// ImportReconciler uploads a configuration backup for a set of devices.
type ImportReconciler struct {
	Provider provider.ImportProvider
	Printer  *progress.Printer
}

func (r *ImportReconciler) Reconcile(ctx context.Context, req ImportRequest) (*provider.ImportResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("file", req.Path)
	if len(req.DeviceIDs) == 0 {
		return nil, ErrNoDevice
	}
	fi, err := os.Stat(req.Path)
	if err != nil || !fi.Mode().IsRegular() {
		r.Printer.Failure("Backup file not found at '%s'", req.Path)
		return nil, fmt.Errorf("backup file not found at %q", req.Path)
	}
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	name := req.Name
	if name == "" {
		name = DefaultImportName
	}
	fileName := filepath.Base(req.Path)
	opts := v1alpha1.ImportOptionsFor(fileName)
	log.Info("Importing backup", "name", name, "devices", len(req.DeviceIDs), "options", opts)
	r.Printer.Info("Attempting to import '%s' for %d devices...", fileName, len(req.DeviceIDs))

	res, err := r.Provider.ImportBackup(ctx, &provider.ImportRequest{
		Name:      name,
		DeviceIDs: req.DeviceIDs,
		FileName:  fileName,
		Content:   f,
		Options:   opts,
	})
	if err != nil {
		r.Printer.Failure("Import failed: %v", err)
		return nil, fmt.Errorf("failed to import backup: %w", err)
	}
	if res == nil {
		return nil, errors.New("provider returned no import result")
	}
	r.Printer.Success("Import request accepted")
	return res, nil
}
