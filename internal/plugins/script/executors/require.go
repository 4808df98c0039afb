package executors

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/rocketship-ai/scriptstep/internal/plugins/script/modules"
)

// sharedRoot is the folder under which source modules of the loader are
// served. It is searched before the code-search path.
const sharedRoot = "/@shared"

// newRegistry creates the module registry of one invocation. Native modules
// of the loader resolve before any file; source modules resolve from
// sharedRoot, then from the search path directories.
func newRegistry(loader modules.Loader, searchPath []string) (*require.Registry, error) {
	folders := make([]string, 0, len(searchPath)+1)
	folders = append(folders, sharedRoot)
	for _, dir := range searchPath {
		folders = append(folders, filepath.ToSlash(dir))
	}

	registry := require.NewRegistry(
		require.WithLoader(sourceLoader(loader)),
		require.WithGlobalFolders(folders...),
	)

	for _, name := range loader.Names() {
		mod, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load module %s: %w", name, err)
		}
		if mod.Native != nil {
			registry.RegisterNativeModule(name, nativeLoader(mod))
		}
	}
	return registry, nil
}

// sourceLoader reads shared source modules from the loader and everything
// else from disk
func sourceLoader(loader modules.Loader) require.SourceLoader {
	return func(p string) ([]byte, error) {
		name, shared := strings.CutPrefix(p, sharedRoot+"/")
		if !shared {
			return require.DefaultSourceLoader(p)
		}

		mod, err := loader.Load(path.Clean(name))
		switch {
		case errors.Is(err, modules.ErrModuleNotFound):
			return nil, require.ModuleFileDoesNotExistError
		case err != nil:
			return nil, err
		case mod.Native != nil:
			return nil, require.ModuleFileDoesNotExistError
		}
		return []byte(mod.Source), nil
	}
}

func nativeLoader(mod *modules.Module) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports, ok := module.Get("exports").(*goja.Object)
		if !ok {
			exports = vm.NewObject()
			_ = module.Set("exports", exports)
		}
		if err := mod.Native(vm, exports); err != nil {
			panic(vm.NewGoError(fmt.Errorf("require %s: %w", mod.Name, err)))
		}
	}
}

// enableRequire installs require() on vm. Interruption raised while a module
// initializes stays uncatchable by the script.
func enableRequire(vm *goja.Runtime, registry *require.Registry) {
	mod := registry.Enable(vm)

	_ = vm.Set("require", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		exports, err := mod.Require(name)
		if err == nil {
			return exports
		}

		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			vm.Interrupt(interrupted.Value())
			return goja.Undefined()
		}
		var exception *goja.Exception
		if errors.As(err, &exception) {
			panic(exception)
		}
		if errors.Is(err, require.InvalidModuleError) {
			err = modules.ErrModuleNotFound
		}
		panic(vm.NewGoError(fmt.Errorf("require %s: %w", name, err)))
	})
}
