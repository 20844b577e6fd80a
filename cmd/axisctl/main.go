// Copyright 2026 The AXIS Harness authors. All Rights Reserved.
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

// axisctl runs the AES-128 stream cipher test sequence on simulated or real
// hardware.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
	"k8s.io/klog/v2"
)

// initialized at compile time with -ldflags "-X main.Version=..."
var (
	Build    string
	Revision string
	Version  string
)

func harnessVersion() semver.Version {
	v, err := semver.NewVersion(strings.TrimPrefix(Version, "v"))
	if err != nil {
		return semver.Version{PreRelease: "dev"}
	}

	return *v
}

func main() {
	klog.InitFlags(nil)
	atexit.Register(klog.Flush)

	// settings from .env never override the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		klog.Warningf("ignoring .env, %v", err)
	}

	root := newRootCmd()
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	if err := root.Execute(); err != nil {
		klog.Errorf("%v", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func env(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
