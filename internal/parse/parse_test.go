package parse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/lang"
	"github.com/phobologic/codeinventory/internal/model"
)

func setup(t *testing.T, langName string) func(source string) []model.Declaration {
	t.Helper()
	l := lang.Languages[langName]
	require.NotNil(t, l, "language %q not registered", langName)
	ext := l.Extensions[0]
	return func(source string) []model.Declaration {
		p := l.NewParser()
		defer p.Close()
		return ExtractDeclarations(context.Background(), l, p, []byte(source), "test"+ext)
	}
}

func find(t *testing.T, decls []model.Declaration, name string, kind model.DeclKind) model.Declaration {
	t.Helper()
	for _, d := range decls {
		if d.Name == name && d.Kind == kind {
			return d
		}
	}
	require.FailNow(t, "declaration not found", "no %s %q in %+v", kind, name, decls)
	return model.Declaration{}
}

func absent(t *testing.T, decls []model.Declaration, name string) {
	t.Helper()
	for _, d := range decls {
		assert.NotEqual(t, name, d.Name, "unexpected declaration %+v", d)
	}
}

// --- TypeScript tests ---

const tsSource = `import { Controller, Get } from '@nestjs/common';

export interface User { id: string }
export type UserId = string;
export enum Role { Admin, Member }
export const MAX_USERS = 100;
const helper = (x: number) => x * 2;
export async function loadUsers(): Promise<User[]> { return []; }

@Controller('users')
export class UsersController {
  @Get()
  async findAll() { return []; }

  static create() { return new UsersController(); }

  private secret() {}
}
`

func TestTypeScriptDeclarations(t *testing.T) {
	t.Parallel()
	extract := setup(t, "typescript")
	decls := extract(tsSource)

	user := find(t, decls, "User", model.InterfaceDecl)
	assert.True(t, user.Exported)
	assert.Equal(t, 3, user.Line)
	find(t, decls, "UserId", model.TypeAliasDecl)
	find(t, decls, "Role", model.EnumDecl)
	assert.True(t, find(t, decls, "MAX_USERS", model.ConstantDecl).Exported)
	assert.False(t, find(t, decls, "helper", model.FunctionDecl).Exported)
	load := find(t, decls, "loadUsers", model.FunctionDecl)
	assert.True(t, load.IsAsync)
	assert.True(t, load.Exported)
}

func TestTypeScriptClassMembers(t *testing.T) {
	t.Parallel()
	extract := setup(t, "typescript")
	decls := extract(tsSource)

	cls := find(t, decls, "UsersController", model.ClassDecl)
	assert.True(t, cls.Exported)
	assert.Equal(t, []string{"Controller"}, cls.Decorators)

	findAll := find(t, decls, "findAll", model.MethodDecl)
	assert.True(t, findAll.IsAsync)
	assert.Equal(t, "UsersController", findAll.Container)
	assert.Equal(t, []string{"Get"}, findAll.Decorators)

	assert.True(t, find(t, decls, "create", model.MethodDecl).IsStatic)
	secret := find(t, decls, "secret", model.MethodDecl)
	assert.Equal(t, model.Private, secret.Visibility)
	assert.False(t, secret.Exported)
}

func TestTypeScriptExportClause(t *testing.T) {
	t.Parallel()
	extract := setup(t, "typescript")
	decls := extract("function a() {}\nfunction b() {}\nexport { a };\n")

	assert.True(t, find(t, decls, "a", model.FunctionDecl).Exported, "a is exported via export clause")
	assert.False(t, find(t, decls, "b", model.FunctionDecl).Exported)
}

// --- JavaScript / JSX tests ---

func TestJSXComponentsAndHooks(t *testing.T) {
	t.Parallel()
	extract := setup(t, "javascript")

	decls := extract(`export function UserCard({ user }) { return <div>{user.name}</div>; }
export const useUser = (id) => { return null; };
const Header = () => <h1>Hi</h1>;
function formatName(u) { return u.name; }
export default class App extends React.Component { render() { return <div />; } }
`)

	assert.True(t, find(t, decls, "UserCard", model.ComponentDecl).Exported)
	assert.True(t, find(t, decls, "useUser", model.HookDecl).Exported)
	find(t, decls, "Header", model.ComponentDecl)
	find(t, decls, "formatName", model.FunctionDecl)
	find(t, decls, "App", model.ClassDecl)
	find(t, decls, "App", model.ComponentDecl)
	find(t, decls, "render", model.MethodDecl)
}

// --- Go tests ---

func TestGoDeclarations(t *testing.T) {
	t.Parallel()
	extract := setup(t, "go")

	decls := extract(`package svc

const MaxItems = 10
const internalLimit = 2

type Store interface { Get(id string) (string, error) }
type Server struct{}
type ID = string

func New() *Server { return &Server{} }
func (s *Server) Handle(id string) error { return nil }
func helper() {}
`)

	assert.True(t, find(t, decls, "MaxItems", model.ConstantDecl).Exported)
	limit := find(t, decls, "internalLimit", model.ConstantDecl)
	assert.False(t, limit.Exported)
	assert.Equal(t, model.Private, limit.Visibility)
	find(t, decls, "Store", model.InterfaceDecl)
	find(t, decls, "Server", model.ClassDecl)
	find(t, decls, "ID", model.TypeAliasDecl)

	ctor := find(t, decls, "New", model.FunctionDecl)
	assert.Equal(t, "New() *Server", ctor.Signature)
	assert.Equal(t, 10, ctor.Line)
	assert.Equal(t, "Server", find(t, decls, "Handle", model.MethodDecl).Container)
	assert.False(t, find(t, decls, "helper", model.FunctionDecl).Exported)
}

// --- Python tests ---

func TestPythonDeclarations(t *testing.T) {
	t.Parallel()
	extract := setup(t, "python")

	decls := extract(`import enum
MAX_RETRIES = 3
_private_thing = 1

class Color(enum.Enum):
    RED = 1

class Repo(Protocol):
    def get(self): ...

class Service:
    def __init__(self):
        pass

    @staticmethod
    def build():
        pass

    async def run(self):
        pass

    def _helper(self):
        pass

async def main():
    pass

def _internal():
    pass
`)

	find(t, decls, "MAX_RETRIES", model.ConstantDecl)
	absent(t, decls, "_private_thing")
	absent(t, decls, "__init__")
	find(t, decls, "Color", model.EnumDecl)
	find(t, decls, "Repo", model.InterfaceDecl)
	find(t, decls, "Service", model.ClassDecl)

	build := find(t, decls, "build", model.MethodDecl)
	assert.True(t, build.IsStatic)
	assert.Equal(t, []string{"staticmethod"}, build.Decorators)
	assert.True(t, find(t, decls, "run", model.MethodDecl).IsAsync)
	assert.Equal(t, model.Private, find(t, decls, "_helper", model.MethodDecl).Visibility)
	mainFn := find(t, decls, "main", model.FunctionDecl)
	assert.True(t, mainFn.IsAsync)
	assert.True(t, mainFn.Exported)
	assert.False(t, find(t, decls, "_internal", model.FunctionDecl).Exported)
}

// --- Ruby tests ---

func TestRubyDeclarations(t *testing.T) {
	t.Parallel()
	extract := setup(t, "ruby")

	decls := extract(`MAX = 10

class User < ApplicationRecord
  ROLE = "admin"

  def self.find_all
  end

  def name
  end

  private

  def secret
  end
end

def helper
end
`)

	find(t, decls, "MAX", model.ConstantDecl)
	assert.Equal(t, "User < ApplicationRecord", find(t, decls, "User", model.ClassDecl).Signature)
	assert.Equal(t, "User", find(t, decls, "ROLE", model.ConstantDecl).Container)
	assert.True(t, find(t, decls, "find_all", model.MethodDecl).IsStatic)
	assert.True(t, find(t, decls, "name", model.MethodDecl).Exported)
	secret := find(t, decls, "secret", model.MethodDecl)
	assert.False(t, secret.Exported)
	assert.Equal(t, model.Private, secret.Visibility)
	find(t, decls, "helper", model.FunctionDecl)
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()
	extract := setup(t, "go")
	assert.Nil(t, extract(""))
}

// --- Reader tests ---

func TestReaderPreservesFileOrderAndSkipsMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, dir, "b.py", "def b():\n    pass\n")
	writeFile(t, dir, "c.ts", "export function c() {}\n")

	files := []discover.FileEntry{
		{Path: "a.go", Language: "go"},
		{Path: "missing.go", Language: "go"},
		{Path: "b.py", Language: "python"},
		{Path: "notes.md"},
		{Path: "c.ts", Language: "typescript"},
	}

	r := &Reader{Workers: 2}
	decls, err := r.Declarations(context.Background(), dir, files)
	require.NoError(t, err)

	var names []string
	for _, d := range decls {
		names = append(names, d.File+":"+d.Name)
	}
	assert.Equal(t, []string{"a.go:A", "b.py:b", "c.ts:c"}, names)
}

func TestReaderSkipsLargeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "big.go", "package big\n\nfunc Big() {}\n")

	r := &Reader{MaxFileSize: 10}
	decls, err := r.Declarations(context.Background(), dir, []discover.FileEntry{{Path: "big.go", Language: "go"}})
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestReaderCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Reader{}
	_, err := r.Declarations(ctx, dir, []discover.FileEntry{{Path: "a.go", Language: "go"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
