//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package otel

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/metric/unit"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregation"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	otelCfg "imaged/pkg/logging/otel/config"
)

const IMAGED_METRIC_PREFIX = "imaged.netmsg."
const MeterName = "imaged-netmsg-meter"

const (
	Operation = string("operation")
	Result    = string("result")
)

// validation results
const (
	ResultValid      string = "VALID"
	ResultIncomplete string = "INCOMPLETE"
	ResultFatal      string = "FATAL"
)

type instruments struct {
	created   syncint64.Counter
	tornDown  syncint64.Counter
	validated syncint64.Counter
	frameSize syncint64.Histogram
}

var (
	mtx           sync.RWMutex
	meterProvider *metric.MeterProvider
	meters        *instruments
)

func Initialize(args ...interface{}) (err error) {
	if len(args) < 1 {
		err = fmt.Errorf("Otel config argument not as expected")
		glog.Error(err)
		return
	}
	var c *otelCfg.Config
	var ok bool
	if c, ok = args[0].(*otelCfg.Config); !ok {
		err = fmt.Errorf("wrong argument type")
		glog.Error(err)
		return
	}
	c.Validate()
	c.Dump()
	if c.Enabled {
		err = InitMetricProvider(c)
	}
	return
}

func Finalize() {
	mtx.Lock()
	provider := meterProvider
	meterProvider = nil
	meters = nil
	mtx.Unlock()

	if provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			glog.Warningf("otel shutdown: %s", err)
		}
	}
}

// InitMetricProvider exports message metrics to the OTLP HTTP collector in
// config.
func InitMetricProvider(config *otelCfg.Config) error {
	if IsEnabled() {
		return nil
	}
	otelCfg.OtelConfig = config

	exp, err := newHTTPExporter(context.Background(), config)
	if err != nil {
		return err
	}
	reader := metric.NewPeriodicReader(exp, metric.WithInterval(time.Duration(config.Resolution)*time.Second))
	return InitWithReader(reader, config)
}

// InitWithReader installs a meter provider collecting through reader.
func InitWithReader(reader metric.Reader, config *otelCfg.Config) error {
	frameSizeView := metric.NewView(
		metric.Instrument{
			Name:  "*frame_size*",
			Scope: instrumentation.Scope{Name: MeterName},
		},
		metric.Stream{
			Aggregation: aggregation.ExplicitBucketHistogram{
				Boundaries: config.FrameSizeBuckets,
			},
		})

	provider := metric.NewMeterProvider(
		metric.WithResource(getResourceInfo(config.Poolname)),
		metric.WithReader(reader),
		metric.WithView(frameSizeView),
	)
	m, err := newInstruments(provider)
	if err != nil {
		return err
	}

	mtx.Lock()
	meterProvider = provider
	meters = m
	mtx.Unlock()
	global.SetMeterProvider(provider)
	return nil
}

func newInstruments(provider *metric.MeterProvider) (m *instruments, err error) {
	meter := provider.Meter(MeterName)
	m = &instruments{}
	if m.created, err = meter.SyncInt64().Counter(
		PopulateMetricNamePrefix("message_created"),
		instrument.WithDescription("Messages constructed"),
		instrument.WithUnit(unit.Dimensionless)); err != nil {
		return
	}
	if m.tornDown, err = meter.SyncInt64().Counter(
		PopulateMetricNamePrefix("message_torn_down"),
		instrument.WithDescription("Messages torn down"),
		instrument.WithUnit(unit.Dimensionless)); err != nil {
		return
	}
	if m.validated, err = meter.SyncInt64().Counter(
		PopulateMetricNamePrefix("message_validated"),
		instrument.WithDescription("Validity checks by result"),
		instrument.WithUnit(unit.Dimensionless)); err != nil {
		return
	}
	m.frameSize, err = meter.SyncInt64().Histogram(
		PopulateMetricNamePrefix("frame_size"),
		instrument.WithDescription("Size of valid frames"),
		instrument.WithUnit(unit.Bytes))
	return
}

func newHTTPExporter(ctx context.Context, config *otelCfg.Config) (metric.Exporter, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(fmt.Sprintf("%s:%d", config.Host, config.Port)),
		otlpmetrichttp.WithTimeout(7 * time.Second),
		otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 1 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  240 * time.Second,
		}),
	}
	if !config.UseTls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func getInstruments() *instruments {
	mtx.RLock()
	defer mtx.RUnlock()
	return meters
}

func IsEnabled() bool {
	return getInstruments() != nil
}

func RecordCreate(op string) {
	if m := getInstruments(); m != nil {
		m.created.Add(context.Background(), 1, attribute.String(Operation, op))
	}
}

func RecordTeardown(op string) {
	if m := getInstruments(); m != nil {
		m.tornDown.Add(context.Background(), 1, attribute.String(Operation, op))
	}
}

// RecordValidation counts one validity check. size is recorded only for valid
// frames.
func RecordValidation(op string, result string, size int64) {
	m := getInstruments()
	if m == nil {
		return
	}
	ctx := context.Background()
	m.validated.Add(ctx, 1, attribute.String(Operation, op), attribute.String(Result, result))
	if result == ResultValid {
		m.frameSize.Record(ctx, size, attribute.String(Operation, op))
	}
}

func PopulateMetricNamePrefix(metricName string) string {
	return IMAGED_METRIC_PREFIX + metricName
}

func getResourceInfo(appName string) *resource.Resource {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(semconv.SchemaURL,
		semconv.HostNameKey.String(hostname),
		semconv.ServiceNameKey.String(appName),
		attribute.String("application", appName),
	)
}
