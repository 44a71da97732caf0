// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobgen

// Template variables available to every template below.
const (
	variableArch        = "ARCH"
	variablePlatform    = "PLATFORM"
	variableTriple      = "TRIPLE"
	variableLibraryPath = "LIBRARY_PATH"
	variableProduct     = "PRODUCT"
)

const jobNameTemplate = "Build for ${PLATFORM} on ${ARCH}"

const (
	toolchainStepName = "Install Rust toolchain"
	toolchainTemplate = "rustup target add ${TRIPLE}"
)

const (
	libraryStepName = "Build core library"
	libraryTemplate = "cargo build --target ${TRIPLE} --release"

	// deploymentTargetVariable is the environment variable the Rust
	// toolchain reads for the minimum macOS version.
	deploymentTargetVariable = "MACOSX_DEPLOYMENT_TARGET"
)

const (
	installNameStepName = "Set core library install name"
	installNameTemplate = "install_name_tool -id @executable_path/libcarbonyl.dylib ${LIBRARY_PATH}"
)

const runtimeStepName = "Build Chromium"

// runtimeTemplate pulls a cached runtime when one exists for this
// revision and otherwise runs the full build. Only the shell knows
// which path ran.
const runtimeTemplate = `if ! scripts/runtime-pull.sh; then
    export GIT_CACHE_PATH="$HOME/.cache/git"
    export CCACHE_DIR="$HOME/.cache/ccache"
    export CCACHE_CPP2=yes
    export CCACHE_BASEDIR="/Volumes/Data/Refloat"
    export CCACHE_SLOPPINESS=file_macro,time_macros,include_file_mtime,include_file_ctime,file_stat_matches,pch_defines

    ccache --set-config=max_size=32G

    scripts/gclient.sh sync
    scripts/patches.sh apply
    scripts/gn.sh gen out/Default --args='import("//carbonyl/src/browser/args.gn") use_lld=false is_debug=false symbol_level=0 cc_wrapper="ccache"'
    scripts/build.sh Default
    scripts/copy-binaries.sh Default
fi
`

const pushStepName = "Push pre-built binaries"

// pushTemplate only pushes when this run built the runtime; a pulled
// runtime is already on the CDN.
const pushTemplate = `if [ -d chromium/src/out/Default ]; then
    scripts/runtime-push.sh
fi
`

const packageTemplate = `mkdir build/zip
cp -r build/pre-built/${TRIPLE} build/zip/${TRIPLE}
cp ${LIBRARY_PATH} build/zip/${TRIPLE}

cd build/zip/${TRIPLE}
zip -r package.zip .
`

const (
	artifactNameTemplate = "${PRODUCT}.${PLATFORM}-${ARCH}.zip"
	artifactPathTemplate = "build/zip/${TRIPLE}/package.zip"
)

// allTemplates lists every template so tests can check each one
// resolves against a target's variables.
var allTemplates = []string{
	jobNameTemplate,
	toolchainTemplate,
	libraryTemplate,
	installNameTemplate,
	runtimeTemplate,
	pushTemplate,
	packageTemplate,
	artifactNameTemplate,
	artifactPathTemplate,
}

// TemplateVariables returns the variable names templates may reference,
// in a fixed order. Configuration loaders that interpolate their own
// ${...} syntax use it to pass these references through untouched.
func TemplateVariables() []string {
	return []string{variableArch, variablePlatform, variableTriple, variableLibraryPath, variableProduct}
}
