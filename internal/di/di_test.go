package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techpal/backend-go/internal/prompt"
	"github.com/techpal/backend-go/internal/safety"
)

func TestNew_RegistersAllProviders(t *testing.T) {
	container, err := New()
	require.NoError(t, err)
	assert.NotNil(t, container)
}

func TestNew_ResolvesPureComponents(t *testing.T) {
	container, err := New()
	require.NoError(t, err)

	// 无外部依赖的组件可以直接解析
	err = container.Invoke(func(validator *safety.Validator, assembler *prompt.Assembler) {
		assert.NotNil(t, validator)
		assert.NotNil(t, assembler)
	})
	assert.NoError(t, err)
}

func TestNew_ContainersAreIndependent(t *testing.T) {
	first, err := New()
	require.NoError(t, err)
	second, err := New()
	require.NoError(t, err)

	type marker struct{ value string }

	require.NoError(t, first.Provide(func() *marker { return &marker{value: "first"} }))

	// 第二个容器没有注册marker，解析应失败
	err = second.Invoke(func(m *marker) {})
	assert.Error(t, err)
}
