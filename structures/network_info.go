package structures

// EthernetInfo is the wired-interface block of a device-availability body.
type EthernetInfo struct {
	IP      string
	Netmask string
	Gateway string
	Status  bool
}

// WlanInfo is the wireless-interface block of a device-availability body.
type WlanInfo struct {
	IP              string
	Netmask         string
	Gateway         string
	Encryption      uint8
	SignalQuality   uint8
	Status          bool
	SSID            string
}

// NetworkInfo is the decoded 0xB0 device-availability body (spec §6.3):
// a leading 0x01 tag, the Ethernet addresses and status, the Wlan
// addresses, a server-status byte, the Wlan encryption, signal-quality and
// status bytes, four reserved bytes, and a length-prefixed SSID.
type NetworkInfo struct {
	Ethernet     EthernetInfo
	Wlan         WlanInfo
	ServerStatus bool
}

// DecodeNetworkInfo decodes a 0xB0 device-availability body.
func DecodeNetworkInfo(message []byte) (*NetworkInfo, error) {
	c := NewCursor(message)
	if _, err := c.U8(); err != nil { // leading 0x01 tag
		return nil, err
	}

	info := &NetworkInfo{}

	ethIP, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	ethMask, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	ethGW, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	ethStatus, err := c.U8()
	if err != nil {
		return nil, err
	}
	info.Ethernet = EthernetInfo{IP: ethIP, Netmask: ethMask, Gateway: ethGW, Status: ethStatus != 0}

	wlanIP, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	wlanMask, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	wlanGW, err := c.IPv4()
	if err != nil {
		return nil, err
	}
	serverStatus, err := c.U8()
	if err != nil {
		return nil, err
	}
	info.ServerStatus = serverStatus != 0

	encryption, err := c.U8()
	if err != nil {
		return nil, err
	}
	signalQuality, err := c.U8()
	if err != nil {
		return nil, err
	}
	wlanStatus, err := c.U8()
	if err != nil {
		return nil, err
	}
	if _, err := c.Bytes(4); err != nil { // reserved
		return nil, err
	}
	ssidLen, err := c.U8()
	if err != nil {
		return nil, err
	}
	ssid, err := c.Bytes(int(ssidLen))
	if err != nil {
		return nil, err
	}

	info.Wlan = WlanInfo{
		IP:            wlanIP,
		Netmask:       wlanMask,
		Gateway:       wlanGW,
		Encryption:    encryption,
		SignalQuality: signalQuality,
		Status:        wlanStatus != 0,
		SSID:          string(ssid),
	}
	return info, nil
}

// EncodeNetworkInfo is the write-side mirror of DecodeNetworkInfo. It is
// the registered RESPONSE_DEVICE_AVAILABLE encoder the master uses to
// answer REQUEST_CHECK_DEVICE.
func EncodeNetworkInfo(info NetworkInfo) ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, 0x01)

	ethIP := packIPv4(info.Ethernet.IP)
	ethMask := packIPv4(info.Ethernet.Netmask)
	ethGW := packIPv4(info.Ethernet.Gateway)
	buf = append(buf, ethIP[:]...)
	buf = append(buf, ethMask[:]...)
	buf = append(buf, ethGW[:]...)
	buf = append(buf, boolByte(info.Ethernet.Status))

	wlanIP := packIPv4(info.Wlan.IP)
	wlanMask := packIPv4(info.Wlan.Netmask)
	wlanGW := packIPv4(info.Wlan.Gateway)
	buf = append(buf, wlanIP[:]...)
	buf = append(buf, wlanMask[:]...)
	buf = append(buf, wlanGW[:]...)
	buf = append(buf, boolByte(info.ServerStatus))
	buf = append(buf, info.Wlan.Encryption, info.Wlan.SignalQuality, boolByte(info.Wlan.Status))
	buf = append(buf, 0, 0, 0, 0)
	buf = append(buf, byte(len(info.Wlan.SSID)))
	buf = append(buf, []byte(info.Wlan.SSID)...)
	return buf, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
