package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "explorepe-api"
	defaultUploadInterval = 15 * time.Second
)

// sampleTypes maps O11Y_PROFILING_SAMPLE_TYPES entries to pyroscope profile types.
// Order here is the order used when the setting is empty.
var sampleTypes = []struct {
	name  string
	types []pyroscope.ProfileType
}{
	{"cpu", []pyroscope.ProfileType{pyroscope.ProfileCPU}},
	{"alloc_space", []pyroscope.ProfileType{pyroscope.ProfileAllocSpace}},
	{"alloc_objects", []pyroscope.ProfileType{pyroscope.ProfileAllocObjects}},
	{"goroutines", []pyroscope.ProfileType{pyroscope.ProfileGoroutines}},
	{"mutex", []pyroscope.ProfileType{pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration}},
	{"block", []pyroscope.ProfileType{pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration}},
}

// InitProfiler starts continuous profiling when enabled and returns its stop function.
// The service labels are attached to every uploaded profile as tags.
func InitProfiler(cfg config.ProfilingConfig, serviceName, namespace, version, instanceID, environment string) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	profileTypes, err := parseProfileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	uploadRate := defaultUploadInterval
	if cfg.UploadIntervalSeconds > 0 {
		uploadRate = time.Duration(cfg.UploadIntervalSeconds) * time.Second
	}

	appName := strings.TrimSpace(cfg.AppName)
	if appName == "" {
		appName = defaultAppName
	}

	tags := serviceTags(serviceName, namespace, version, instanceID, environment)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      uploadRate,
		ProfileTypes:    profileTypes,
		Tags:            tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Any("tags", tags),
		zap.Duration("upload_rate", uploadRate),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

func defaultProfileTypes() []pyroscope.ProfileType {
	var all []pyroscope.ProfileType
	for _, st := range sampleTypes {
		all = append(all, st.types...)
	}
	return all
}

func parseProfileTypes(value string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(value) == "" {
		return defaultProfileTypes(), nil
	}

	known := make(map[string]bool, len(sampleTypes))
	for _, st := range sampleTypes {
		known[st.name] = true
	}

	requested := make(map[string]bool)
	for _, raw := range strings.Split(value, ",") {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		if !known[key] {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", key)
		}
		requested[key] = true
	}

	var types []pyroscope.ProfileType
	for _, st := range sampleTypes {
		if requested[st.name] {
			types = append(types, st.types...)
		}
	}

	if len(types) == 0 {
		return defaultProfileTypes(), nil
	}
	return types, nil
}

// serviceTags omits labels with empty values
func serviceTags(serviceName, namespace, version, instanceID, environment string) map[string]string {
	tags := make(map[string]string, 5)
	for key, value := range map[string]string{
		"service_name":    serviceName,
		"namespace":       namespace,
		"service_version": version,
		"instance":        instanceID,
		"environment":     environment,
	} {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	return tags
}
