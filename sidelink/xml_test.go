package sidelink

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<sidelinkConfig subchannelSize="10" numSubchannels="5" probResourceKeep="0.4" reselectAfter="3" useCBR="true" usePreconfiguredTxParams="false">
  <userEquipment-txParameters minMCS-PSSCH="0" maxMCS-PSSCH="20" minSubchannel-NumberPSSCH="1" maxSubchannel-NumberPSSCH="3" allowedRetxNumberPSSCH="1" cr-Limit="0" />
  <Sl-CBR-CommonTxConfigList default-cbr-ConfigIndex="1">
    <cbr-Levels-Config cbr-lower="0" cbr-upper="25" cbr-PSSCH-TxConfig-Index="0" />
    <cbr-Levels-Config cbr-lower="25" cbr-upper="100" cbr-PSSCH-TxConfig-Index="1" />
    <cbr-PSSCH-TxConfig>
      <txParameters minMCS-PSSCH="0" maxMCS-PSSCH="20" minSubchannel-NumberPSSCH="1" maxSubchannel-NumberPSSCH="3" allowedRetxNumberPSSCH="2" cr-Limit="0" />
    </cbr-PSSCH-TxConfig>
    <cbr-PSSCH-TxConfig>
      <txParameters minMCS-PSSCH="0" maxMCS-PSSCH="10" minSubchannel-NumberPSSCH="1" maxSubchannel-NumberPSSCH="1" allowedRetxNumberPSSCH="0" cr-Limit="0" />
    </cbr-PSSCH-TxConfig>
  </Sl-CBR-CommonTxConfigList>
  <RestrictResourceReservationPeriodList>
    <RestrictResourceReservationPeriod rri="20" />
    <RestrictResourceReservationPeriod rri="100" />
  </RestrictResourceReservationPeriodList>
</sidelinkConfig>`

func TestLoadConfigXML(t *testing.T) {
	cfg, err := LoadConfigXML(strings.NewReader(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MinMcs)
	assert.Equal(t, 20, cfg.MaxMcs)
	assert.Equal(t, []int{20, 100}, cfg.ValidRRIs)
	assert.Equal(t, 1, cfg.DefaultCbrIndex)
	assert.Len(t, cfg.CBRLevels, 2)
	assert.Len(t, cfg.CBRTxConfigs, 2)
	// Confirms the cbr-PSSCH-TxConfig-Index fix: index comes from its own
	// attribute, not copied from cbr-lower.
	assert.Equal(t, 0, cfg.CBRLevels[0].TxConfigIndex)
	assert.Equal(t, 1, cfg.CBRLevels[1].TxConfigIndex)
}

func TestLoadConfigXMLFromFile(t *testing.T) {
	f, err := os.Open("../testdata/txconfig.xml")
	require.NoError(t, err)
	defer f.Close()

	cfg, err := LoadConfigXML(f)
	require.NoError(t, err)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigXMLMissingTxParameters(t *testing.T) {
	const doc = `<sidelinkConfig subchannelSize="10" numSubchannels="5"></sidelinkConfig>`
	_, err := LoadConfigXML(strings.NewReader(doc))
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadConfigXMLMalformed(t *testing.T) {
	_, err := LoadConfigXML(strings.NewReader("<not-xml"))
	require.Error(t, err)
}
