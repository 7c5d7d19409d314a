package di

import (
	"context"
	"time"

	"onlinesync/internal/providers"
	"onlinesync/internal/sink"
	"onlinesync/internal/structures"
)

const sheetsDialTimeout = 30 * time.Second

// ProvideLogger wraps the log provider so the log file is closed on cleanup.
func ProvideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

func ProvideFileManager(logger providers.Logger) (*sink.FileManager, func(), error) {
	compressor, err := sink.NewZstdCompressor()
	if err != nil {
		return nil, nil, err
	}
	files := sink.NewFileManager(compressor, logger)
	return files, files.Close, nil
}

// ProvideSheetsClient returns nil when the sheets sink is disabled.
func ProvideSheetsClient(conf *structures.Config) (sink.SheetsClient, error) {
	if !conf.Sheets.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sheetsDialTimeout)
	defer cancel()
	return sink.NewGoogleSheetsClient(ctx, conf)
}

// ProvideSinks builds the enabled sinks in a fixed order: csv, then sheets.
func ProvideSinks(conf *structures.Config, files *sink.FileManager, client sink.SheetsClient, logger providers.Logger) []sink.Sink {
	var sinks []sink.Sink
	if conf.CSV.Enabled {
		sinks = append(sinks, sink.NewCSVSink(conf, files, logger))
	}
	if conf.Sheets.Enabled && client != nil {
		sinks = append(sinks, sink.NewSheetsSink(conf, client, logger))
	}
	return sinks
}

// ProvideTagSource prefers the tags worksheet and falls back to a local tags
// CSV. It returns nil when neither is configured.
func ProvideTagSource(conf *structures.Config, client sink.SheetsClient) sink.TagSource {
	switch {
	case conf.Sheets.Enabled && client != nil && conf.Sheets.TagsWorksheet != "":
		return sink.NewSheetsTagSource(client, conf.Sheets.TagsWorksheet)
	case conf.CSV.TagsFile != "":
		return sink.NewCSVTagSource(conf.CSV.TagsFile)
	default:
		return nil
	}
}
