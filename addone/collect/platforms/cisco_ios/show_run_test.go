package cisco_ios

import (
	"testing"

	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRunningConfig = `Building configuration...

Current configuration : 4120 bytes
!
version 17.3
service timestamps debug datetime msec
!
hostname R1
!
license udi pid ISR4331/K9 sn FDO21120U8C
!
interface GigabitEthernet0/0/0
 description WAN Link
 ip address 10.0.0.1 255.255.255.0
 negotiation auto
!
interface GigabitEthernet0/0/1.100
 description Users VLAN
 encapsulation dot1Q 100
 ip address 192.168.100.1 255.255.255.0
!
interface Vlan1
 description not collected
 ip address 172.16.0.1 255.255.0.0
!
interface Loopback0
 ip address 1.1.1.1 255.255.255.255
!
router ospf 1
 network 10.0.0.0 0.0.0.255 area 0
!
end
`

func strp(s string) *string { return &s }

func TestExtractRunningConfig(t *testing.T) {
	rec := ExtractRunningConfig(sampleRunningConfig)

	assert.Equal(t, "R1", rec.Hostname)
	assert.Equal(t, "FDO21120U8C", rec.SerialNumber)
	require.Len(t, rec.Interfaces, 3, "Vlan1 不在支持范围内，应被跳过")

	assert.Equal(t, collect.InterfaceRecord{
		Name:        "GigabitEthernet0/0/0",
		Description: strp("WAN Link"),
		IPAddress:   strp("10.0.0.1 255.255.255.0"),
	}, rec.Interfaces[0])
	assert.Equal(t, collect.InterfaceRecord{
		Name:        "GigabitEthernet0/0/1.100",
		Description: strp("Users VLAN"),
		IPAddress:   strp("192.168.100.1 255.255.255.0"),
		Dot1QVLAN:   strp("100"),
	}, rec.Interfaces[1])
	assert.Equal(t, collect.InterfaceRecord{
		Name:      "Loopback0",
		IPAddress: strp("1.1.1.1 255.255.255.255"),
	}, rec.Interfaces[2])
}

func TestExtractDefaults(t *testing.T) {
	rec := ExtractRunningConfig("version 17.3\n!\ninterface GigabitEthernet1\n shutdown\n!\n")

	assert.Equal(t, collect.DefaultHostname, rec.Hostname)
	assert.Equal(t, collect.DefaultSerialNumber, rec.SerialNumber)
	require.Len(t, rec.Interfaces, 1)
	assert.Nil(t, rec.Interfaces[0].Description)
	assert.Nil(t, rec.Interfaces[0].IPAddress)
	assert.Nil(t, rec.Interfaces[0].Dot1QVLAN)

	empty := ExtractRunningConfig("")
	assert.Equal(t, "unknown", empty.Hostname)
	assert.Equal(t, "not available", empty.SerialNumber)
	assert.NotNil(t, empty.Interfaces)
	assert.Empty(t, empty.Interfaces)
}

func TestExtractHostnameFirstMatchOnly(t *testing.T) {
	doc := "interface Loopback1\n hostname inside-block\n!\nhostname R1\nhostname R2\n"
	rec := ExtractRunningConfig(doc)
	assert.Equal(t, "R1", rec.Hostname, "缩进行不是顶层 hostname，且只取第一条")

	rec = ExtractRunningConfig("hostnameR9\n hostname R9\n")
	assert.Equal(t, "unknown", rec.Hostname)
}

func TestExtractSerialNumber(t *testing.T) {
	rec := ExtractRunningConfig("license udi pid C8000V sn 9ABCDEF1234\nlicense udi pid X sn OTHER\n")
	assert.Equal(t, "9ABCDEF1234", rec.SerialNumber)

	rec = ExtractRunningConfig("license udi pid C8000V\nlicense boot level network-advantage\n")
	assert.Equal(t, "not available", rec.SerialNumber)
}

func TestExtractConsecutiveBlocksPreserveOrder(t *testing.T) {
	doc := "interface Loopback10\n ip address 10.10.10.10 255.255.255.255\ninterface GigabitEthernet2\n description second\n"
	rec := ExtractRunningConfig(doc)

	require.Len(t, rec.Interfaces, 2)
	assert.Equal(t, "Loopback10", rec.Interfaces[0].Name)
	assert.Equal(t, "GigabitEthernet2", rec.Interfaces[1].Name)
	assert.Equal(t, "second", *rec.Interfaces[1].Description)
	assert.Nil(t, rec.Interfaces[0].Description)
}

func TestExtractBlockBoundaries(t *testing.T) {
	// 空行不结束接口块；行首语句结束接口块，其后的缩进行不归属任何接口
	doc := "interface GigabitEthernet1\n description first\n\n ip address 10.1.1.1 255.255.255.252\nip route 0.0.0.0 0.0.0.0 10.1.1.2\n encapsulation dot1Q 5\n"
	rec := ExtractRunningConfig(doc)

	require.Len(t, rec.Interfaces, 1)
	itf := rec.Interfaces[0]
	assert.Equal(t, "first", *itf.Description)
	assert.Equal(t, "10.1.1.1 255.255.255.252", *itf.IPAddress)
	assert.Nil(t, itf.Dot1QVLAN)
}

func TestExtractFirstFieldMatchWins(t *testing.T) {
	doc := "interface GigabitEthernet3\n ip address 10.0.0.1 255.0.0.0\n ip address 10.0.0.2 255.0.0.0 secondary\n description   spaced out text  \n description later\n encapsulation dot1Q 200 native\n"
	rec := ExtractRunningConfig(doc)

	require.Len(t, rec.Interfaces, 1)
	itf := rec.Interfaces[0]
	assert.Equal(t, "10.0.0.1 255.0.0.0", *itf.IPAddress)
	assert.Equal(t, "spaced out text", *itf.Description)
	assert.Equal(t, "200", *itf.Dot1QVLAN)
}

func TestExtractKeywordsAreCaseSensitive(t *testing.T) {
	doc := "Hostname R1\ninterface GigabitEthernet4\n Description upper\n encapsulation dot1q 10\n ip address dhcp\n"
	rec := ExtractRunningConfig(doc)

	assert.Equal(t, "unknown", rec.Hostname)
	require.Len(t, rec.Interfaces, 1)
	assert.Nil(t, rec.Interfaces[0].Description)
	assert.Nil(t, rec.Interfaces[0].Dot1QVLAN)
	assert.Nil(t, rec.Interfaces[0].IPAddress, "ip address dhcp 没有地址与掩码两个参数")
}

func TestExtractSkipsUnsupportedInterfaceNames(t *testing.T) {
	doc := "interface TenGigabitEthernet0/1\n description ten\ninterface Loopback0abc\n description odd\ninterface Tunnel0\n description tun\ninterface GigabitEthernet0/1\n description ok\n"
	rec, skipped := scanRunningConfig(doc)

	require.Len(t, rec.Interfaces, 1)
	assert.Equal(t, "GigabitEthernet0/1", rec.Interfaces[0].Name)
	assert.Equal(t, []string{"TenGigabitEthernet0/1", "Loopback0abc", "Tunnel0"}, skipped)
}

func TestExtractLineEndings(t *testing.T) {
	doc := "hostname CR1\r\ninterface Loopback1\r\n description crlf\r\n!\r\n"
	rec := ExtractRunningConfig(doc)

	assert.Equal(t, "CR1", rec.Hostname)
	require.Len(t, rec.Interfaces, 1)
	assert.Equal(t, "crlf", *rec.Interfaces[0].Description)
}

func TestExtractTabIndentedBody(t *testing.T) {
	rec := ExtractRunningConfig("interface GigabitEthernet9\n\tdescription tabbed\n")
	require.Len(t, rec.Interfaces, 1)
	assert.Equal(t, "tabbed", *rec.Interfaces[0].Description)
}

func TestPluginParse(t *testing.T) {
	p := collect.Get("cisco_iosxe")
	require.IsType(t, &Plugin{}, p)
	assert.Equal(t, []string{"show running-config"}, p.SystemCommands())

	ctx := collect.ParseContext{Platform: "cisco_iosxe", Source: "r1.cfg", TaskID: "t-1", Status: collect.TaskStatusSuccess}
	out, err := p.Parse(ctx, sampleRunningConfig)
	require.NoError(t, err)

	assert.Equal(t, "R1", out.Record.Hostname)
	assert.Equal(t, []string{"Vlan1"}, out.Skipped)
	require.Len(t, out.Rows, 4)

	assert.Equal(t, collect.TableDeviceConfigs, out.Rows[0].Table)
	assert.Equal(t, 3, out.Rows[0].Data["interface_count"])

	loop := out.Rows[3].Values()
	assert.Equal(t, collect.TableDeviceInterfaces, out.Rows[3].Table)
	assert.Equal(t, "Loopback0", loop["int_name"])
	assert.Equal(t, 2, loop["position"])
	assert.Nil(t, loop["description"])
	assert.Equal(t, "t-1", loop["task_id"])
	assert.Equal(t, "r1.cfg", loop["source_path"])

	_, ok := collect.Lookup("CISCO_IOS")
	assert.True(t, ok, "平台名大小写不敏感")
}
