package sidelink

import (
	"encoding/xml"
	"fmt"
	"io"
)

// The wire format below mirrors spec.md §6's element names. XML parsing is
// an explicitly out-of-scope "external collaborator" concern per spec.md
// §1 -- this loader does the minimum needed to produce a validated Config,
// not a full 3GPP XSD validation.

type xmlTxParams struct {
	MinMcs      int `xml:"minMCS-PSSCH,attr"`
	MaxMcs      int `xml:"maxMCS-PSSCH,attr"`
	MinSubch    int `xml:"minSubchannel-NumberPSSCH,attr"`
	MaxSubch    int `xml:"maxSubchannel-NumberPSSCH,attr"`
	AllowedRetx int `xml:"allowedRetxNumberPSSCH,attr"`
	CrLimit     int `xml:"cr-Limit,attr"`
}

type xmlCbrLevel struct {
	Lower         int `xml:"cbr-lower,attr"`
	Upper         int `xml:"cbr-upper,attr"`
	TxConfigIndex int `xml:"cbr-PSSCH-TxConfig-Index,attr"`
}

type xmlCbrTxConfig struct {
	TxParameters xmlTxParams `xml:"txParameters"`
}

type xmlCbrCommonTxConfigList struct {
	DefaultCbrIndex int              `xml:"default-cbr-ConfigIndex,attr"`
	Levels          []xmlCbrLevel    `xml:"cbr-Levels-Config"`
	TxConfigs       []xmlCbrTxConfig `xml:"cbr-PSSCH-TxConfig"`
}

type xmlRri struct {
	Rri int `xml:"rri,attr"`
}

type xmlRriList struct {
	Periods []xmlRri `xml:"RestrictResourceReservationPeriod"`
}

type xmlSidelinkConfig struct {
	XMLName          xml.Name                 `xml:"sidelinkConfig"`
	UeTxParameters   *xmlTxParams             `xml:"userEquipment-txParameters"`
	CbrCommonConfig  *xmlCbrCommonTxConfigList `xml:"Sl-CBR-CommonTxConfigList"`
	RriList          *xmlRriList              `xml:"RestrictResourceReservationPeriodList"`
	SubchannelSize   int                      `xml:"subchannelSize,attr"`
	NumSubchannels   int                      `xml:"numSubchannels,attr"`
	ProbResourceKeep float64                  `xml:"probResourceKeep,attr"`
	ReselectAfter    int                      `xml:"reselectAfter,attr"`
	UseCBR           bool                     `xml:"useCBR,attr"`
	UsePreconfigured bool                     `xml:"usePreconfiguredTxParams,attr"`
}

// LoadConfigXML parses the sidelink device configuration document per
// spec.md §6 and returns a validated, immutable Config. A missing required
// element is fatal, per spec.md §7.
func LoadConfigXML(r io.Reader) (*Config, error) {
	var doc xmlSidelinkConfig
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("malformed XML: %v", err)}
	}

	if doc.UeTxParameters == nil {
		return nil, &ConfigError{Reason: "no userEquipment-txParameters configuration found in configuration file"}
	}
	if doc.CbrCommonConfig == nil {
		return nil, &ConfigError{Reason: "no Sl-CBR-CommonTxConfigList found in configuration file"}
	}
	if len(doc.CbrCommonConfig.Levels) == 0 {
		return nil, &ConfigError{Reason: "no cbr-Levels-Config found in configuration file"}
	}
	if len(doc.CbrCommonConfig.TxConfigs) == 0 {
		return nil, &ConfigError{Reason: "no cbr-PSSCH-TxConfig found in configuration file"}
	}
	if doc.RriList == nil || len(doc.RriList.Periods) == 0 {
		return nil, &ConfigError{Reason: "no RestrictResourceReservationPeriod found in configuration file"}
	}

	cfg := &Config{
		MinMcs:                   doc.UeTxParameters.MinMcs,
		MaxMcs:                   doc.UeTxParameters.MaxMcs,
		MinSubch:                 doc.UeTxParameters.MinSubch,
		MaxSubch:                 doc.UeTxParameters.MaxSubch,
		AllowedRetx:              doc.UeTxParameters.AllowedRetx,
		DefaultCbrIndex:          doc.CbrCommonConfig.DefaultCbrIndex,
		SubchannelSize:           doc.SubchannelSize,
		NumSubchannels:           doc.NumSubchannels,
		ProbResourceKeep:         doc.ProbResourceKeep,
		ReselectAfter:            doc.ReselectAfter,
		UseCBR:                   doc.UseCBR,
		UsePreconfiguredTxParams: doc.UsePreconfigured,
	}

	// Fixes the spec.md §9 open question: cbr-PSSCH-TxConfig-Index comes
	// from its own XML key, not copied from cbr-lower as the source did.
	for _, lvl := range doc.CbrCommonConfig.Levels {
		cfg.CBRLevels = append(cfg.CBRLevels, CBRLevel{
			Lower:         lvl.Lower,
			Upper:         lvl.Upper,
			TxConfigIndex: lvl.TxConfigIndex,
		})
	}

	for _, tc := range doc.CbrCommonConfig.TxConfigs {
		p := tc.TxParameters
		cfg.CBRTxConfigs = append(cfg.CBRTxConfigs, CBRTxConfig{
			MinMcs:      p.MinMcs,
			MaxMcs:      p.MaxMcs,
			MinSubch:    p.MinSubch,
			MaxSubch:    p.MaxSubch,
			AllowedRetx: p.AllowedRetx,
			CrLimit:     p.CrLimit,
		})
	}

	for _, rri := range doc.RriList.Periods {
		cfg.ValidRRIs = append(cfg.ValidRRIs, rri.Rri)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
