// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

const (
	// DefaultOSPFProcessID is the process identifier of OSPF Process 1.
	DefaultOSPFProcessID = "1"
	// DefaultOSPFProcessName is the value of the "Process 1" checkbox on the device routing page.
	DefaultOSPFProcessName = "PROCESS_1"
	// BackboneAreaID is the OSPF backbone area.
	BackboneAreaID = "0"
	// DefaultDistance is the administrative distance Cisco assigns to OSPF routes.
	DefaultDistance = 110
	// DefaultLSAGroupPacing is the LSA group pacing timer in seconds.
	DefaultLSAGroupPacing = 10
)

// OSPFRoute is the OSPFv2 routing configuration of a single device
// (the "ospfv2routes" resource).
type OSPFRoute struct {
	Type                  string                   `json:"type"`
	ID                    string                   `json:"id,omitempty"`
	ProcessID             string                   `json:"processId"`
	EnableProcess         string                   `json:"enableProcess"`
	ProcessConfiguration  OSPFProcessConfiguration `json:"processConfiguration"`
	RedistributeProtocols []RedistributeProtocol   `json:"redistributeProtocols"`
	FilterRules           []FilterRule             `json:"filterRules"`
	SummaryAddresses      []SummaryAddress         `json:"summaryAddresses"`
	LogAdjacencyChanges   *LogAdjacencyChanges     `json:"logAdjacencyChanges,omitempty"`
	Areas                 []OSPFArea               `json:"areas"`
	Links                 *Links                   `json:"links,omitempty"`
}

// OSPFProcessConfiguration holds the process-wide settings.
type OSPFProcessConfiguration struct {
	RFC1583Compatible      bool                   `json:"rfc1583Compatible"`
	IgnoreLsaMospf         bool                   `json:"ignoreLsaMospf"`
	AdministrativeDistance AdministrativeDistance `json:"administrativeDistance"`
	Timers                 OSPFTimers             `json:"timers"`
}

// AdministrativeDistance per OSPF route type.
type AdministrativeDistance struct {
	InterArea int `json:"interArea"`
	IntraArea int `json:"intraArea"`
	External  int `json:"external"`
}

type OSPFTimers struct {
	LSAGroup int `json:"lsaGroup"`
}

// RedistributeProtocol, FilterRule and SummaryAddress are always sent as
// empty lists. A non-empty redistribution list turns the device into an
// ASBR, which is not wanted for an internal router.
type (
	RedistributeProtocol struct {
		Type string `json:"type"`
	}
	FilterRule struct {
		Type string `json:"type"`
	}
	SummaryAddress struct {
		Type string `json:"type"`
	}
)

type LogAdjacencyChanges struct {
	LogType LogType `json:"logType"`
}

type LogType string

const (
	LogTypeDefault  LogType = "DEFAULT"
	LogTypeDetailed LogType = "DETAILED"
)

// OSPFArea is a single area of an [OSPFRoute].
type OSPFArea struct {
	AreaID       string       `json:"areaId"`
	AreaType     OSPFAreaType `json:"areaType"`
	AreaNetworks []Reference  `json:"areaNetworks"`
}

type OSPFAreaType struct {
	Type AreaType `json:"type"`
}

type AreaType string

const (
	AreaTypeNormal AreaType = "normal"
	AreaTypeStub   AreaType = "stub"
	AreaTypeNSSA   AreaType = "nssa"
)

// NetworkCount returns the number of networks over all areas.
func (r *OSPFRoute) NetworkCount() int {
	var n int
	for _, a := range r.Areas {
		n += len(a.AreaNetworks)
	}
	return n
}

// OSPFProcess toggles an OSPFv2 process on a device
// (the "ospfv2process" resource).
type OSPFProcess struct {
	Type        string `json:"type"`
	ID          string `json:"id,omitempty"`
	ProcessName string `json:"processName"`
	Enabled     *bool  `json:"enabled,omitempty"`
}
