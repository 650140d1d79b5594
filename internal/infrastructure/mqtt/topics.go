package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "cec"

// Topics builds the cecctl topic hierarchy under a prefix:
//
//	{prefix}/command/{address}   commands in (JSON CommandMessage)
//	{prefix}/ack/{address}       command acknowledgements out
//	{prefix}/state/{address}     retained device state out
//	{prefix}/health              retained bridge health out
//	{prefix}/status              retained online/offline (LWT)
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// Command returns the command topic for a logical address or "bus".
func (t Topics) Command(address string) string {
	return t.prefix() + "/command/" + address
}

// AllCommands returns the wildcard subscription for every command topic.
func (t Topics) AllCommands() string {
	return t.prefix() + "/command/+"
}

// Ack returns the acknowledgement topic for an address.
func (t Topics) Ack(address string) string {
	return t.prefix() + "/ack/" + address
}

// State returns the retained state topic for an address.
func (t Topics) State(address string) string {
	return t.prefix() + "/state/" + address
}

// Health returns the retained bridge health topic.
func (t Topics) Health() string {
	return t.prefix() + "/health"
}

// Status returns the retained online/offline topic used for the LWT.
func (t Topics) Status() string {
	return t.prefix() + "/status"
}

// AddressFromTopic returns the last topic level, e.g. "4" for "cec/command/4".
func AddressFromTopic(topic string) string {
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
