// Copyright 2025 The statecache Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mx-go/statecache/setup/config"
)

// SetupHookLogging configures the logging hooks defined in the
// configuration. If something fails here it means that the logging was
// improperly configured, so we just exit with the error.
func SetupHookLogging(hooks []config.LogrusHook, componentName string) {
	for _, hook := range hooks {
		// Check we received a proper logging level
		level, err := logrus.ParseLevel(hook.Level)
		if err != nil {
			logrus.Fatalf("Unrecognised logging level %s: %q", hook.Level, err)
		}

		switch hook.Type {
		case "file":
			checkFileHookParams(hook.Params)
			setupFileHook(hook, level, componentName)
		case "std":
			logrus.SetLevel(level)
		default:
			logrus.Fatalf("Unrecognised logging hook type: %s", hook.Type)
		}
	}
}

func checkFileHookParams(params map[string]interface{}) {
	path, ok := params["path"]
	if !ok {
		logrus.Fatalf("Expecting a parameter \"path\" for logging hook of type \"file\"")
	}
	if _, ok := path.(string); !ok {
		logrus.Fatalf("Parameter \"path\" for logging hook of type \"file\" should be a string")
	}
}

func setupFileHook(hook config.LogrusHook, level logrus.Level, componentName string) {
	path := hook.Params["path"].(string)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logrus.Fatalf("Could not open log file %q: %q", path, err)
	}
	logrus.AddHook(&fileHook{level: level, entries: logrus.AllLevels, out: f, component: componentName})
}

type fileHook struct {
	level     logrus.Level
	entries   []logrus.Level
	out       io.Writer
	component string
}

func (h *fileHook) Levels() []logrus.Level { return h.entries }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	if entry.Level > h.level {
		return nil
	}
	entry.Data["component"] = h.component
	line, err := entry.String()
	if err != nil {
		return err
	}
	_, err = h.out.Write([]byte(line))
	return err
}

// CloseAndLogIfError closes io.Closer and logs the error if any.
func CloseAndLogIfError(ctx context.Context, closer io.Closer, message string) {
	if closer == nil {
		return
	}
	err := closer.Close()
	if ctx == nil {
		ctx = context.TODO()
	}
	if err != nil {
		logrus.WithError(err).WithContext(ctx).Error(message)
	}
}
