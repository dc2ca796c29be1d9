package inspect

import (
	"fmt"
	"strconv"

	gosiplog "github.com/ghettovoice/gosip/log"
	"github.com/ghettovoice/gosip/sip"
	"github.com/ghettovoice/gosip/sip/parser"
	"github.com/sirupsen/logrus"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/log"
)

// SipParser turns a SIP payload into labels.
type SipParser struct {
	delegate *parser.PacketParser
}

func NewSipParser() *SipParser {
	entry, ok := log.GetLogger().GetEntry().(*logrus.Entry)
	if !ok {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SipParser{
		delegate: parser.NewPacketParser(&LoggerAdapter{logger: entry}),
	}
}

// Parse parses one complete SIP message.
func (p *SipParser) Parse(data []byte) (sip.Message, error) {
	msg, err := p.delegate.ParseMessage(data)
	if err != nil {
		return nil, fmt.Errorf("parse sip message: %w", err)
	}
	return msg, nil
}

// Labels parses data and extracts the sip.* labels.
func (p *SipParser) Labels(data []byte) (core.Labels, error) {
	msg, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	labels := core.Labels{}
	switch m := msg.(type) {
	case sip.Request:
		labels[core.LabelSIPMethod] = string(m.Method())
	case sip.Response:
		labels[core.LabelSIPStatusCode] = strconv.Itoa(int(m.StatusCode()))
	}
	if id, ok := msg.CallID(); ok {
		labels[core.LabelSIPCallID] = id.Value()
	}
	if from, ok := msg.From(); ok && from.Address != nil {
		labels[core.LabelSIPFromURI] = from.Address.String()
	}
	if to, ok := msg.To(); ok && to.Address != nil {
		labels[core.LabelSIPToURI] = to.Address.String()
	}
	return labels, nil
}

func sipSummary(labels core.Labels) string {
	head := labels[core.LabelSIPMethod]
	if head == "" {
		head = labels[core.LabelSIPStatusCode]
	}
	return fmt.Sprintf("%s call-id %s", head, labels[core.LabelSIPCallID])
}

// LoggerAdapter lets the gosip parser log through logrus.
type LoggerAdapter struct {
	logger *logrus.Entry
}

func (la *LoggerAdapter) Fields() gosiplog.Fields {
	return gosiplog.Fields(la.logger.Data)
}

func (la *LoggerAdapter) WithFields(fields map[string]interface{}) gosiplog.Logger {
	return &LoggerAdapter{logger: la.logger.WithFields(fields)}
}

func (la *LoggerAdapter) Prefix() string {
	return ""
}

func (la *LoggerAdapter) WithPrefix(prefix string) gosiplog.Logger {
	return &LoggerAdapter{logger: la.logger.WithField("prefix", prefix)}
}

func (la *LoggerAdapter) Print(args ...interface{})                 { la.logger.Print(args...) }
func (la *LoggerAdapter) Printf(format string, args ...interface{}) { la.logger.Printf(format, args...) }
func (la *LoggerAdapter) Trace(args ...interface{})                 { la.logger.Trace(args...) }
func (la *LoggerAdapter) Tracef(format string, args ...interface{}) { la.logger.Tracef(format, args...) }
func (la *LoggerAdapter) Debug(args ...interface{})                 { la.logger.Debug(args...) }
func (la *LoggerAdapter) Debugf(format string, args ...interface{}) { la.logger.Debugf(format, args...) }
func (la *LoggerAdapter) Info(args ...interface{})                  { la.logger.Info(args...) }
func (la *LoggerAdapter) Infof(format string, args ...interface{})  { la.logger.Infof(format, args...) }
func (la *LoggerAdapter) Warn(args ...interface{})                  { la.logger.Warn(args...) }
func (la *LoggerAdapter) Warnf(format string, args ...interface{})  { la.logger.Warnf(format, args...) }
func (la *LoggerAdapter) Error(args ...interface{})                 { la.logger.Error(args...) }
func (la *LoggerAdapter) Errorf(format string, args ...interface{}) { la.logger.Errorf(format, args...) }
func (la *LoggerAdapter) Fatal(args ...interface{})                 { la.logger.Fatal(args...) }
func (la *LoggerAdapter) Fatalf(format string, args ...interface{}) { la.logger.Fatalf(format, args...) }
func (la *LoggerAdapter) Panic(args ...interface{})                 { la.logger.Panic(args...) }
func (la *LoggerAdapter) Panicf(format string, args ...interface{}) { la.logger.Panicf(format, args...) }

func (la *LoggerAdapter) SetLevel(level uint32) {
	la.logger.Logger.SetLevel(logrus.Level(level))
}
